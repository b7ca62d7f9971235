package auth

import (
	"context"
	"time"
)

// startCheckerLocked starts the periodic expiry check if the manager is
// running and no checker is active.
func (sm *SessionManager) startCheckerLocked() {
	if sm.scope == nil || sm.closed || sm.stopChecker != nil {
		return
	}
	ctx, cancel := context.WithCancel(sm.scope)
	sm.stopChecker = cancel
	sm.wg.Add(1)
	go sm.runChecker(ctx)
}

func (sm *SessionManager) stopCheckerLocked() {
	if sm.stopChecker != nil {
		sm.stopChecker()
		sm.stopChecker = nil
	}
}

func (sm *SessionManager) runChecker(ctx context.Context) {
	defer sm.wg.Done()

	ticker := time.NewTicker(sm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.checkExpiry(ctx)
		}
	}
}

// checkExpiry refreshes the access token if it is nearing expiry.
func (sm *SessionManager) checkExpiry(ctx context.Context) {
	s, ok := sm.Snapshot()
	if !ok || !sm.inspector.IsNearingExpiry(s.AccessToken) {
		return
	}
	sm.logger.Debug().Msg("access token nearing expiry, refreshing")
	if _, err := sm.RefreshAccessToken(ctx, s); err != nil {
		sm.logger.Debug().Err(err).Msg("scheduled refresh did not complete")
	}
}
