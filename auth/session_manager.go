package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/gateway"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/roles"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/token/jwt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultCheckInterval is how often the background checker looks at the access token.
const DefaultCheckInterval = time.Minute

// SessionManager owns the authenticated session for the lifetime of the process.
// It installs sessions on login, keeps the access token fresh, and clears
// everything on logout or an unrecoverable refresh failure.
//
// The in-memory session and the credential store always agree once an
// operation returns: either both hold the session or neither does.
type SessionManager struct {
	gateway       Gateway
	store         *sessions.CredentialStore
	inspector     *jwt.Inspector
	metrics       metrics.Recorder
	logger        zerolog.Logger
	checkInterval time.Duration
	expiryBuffer  time.Duration
	nowTime       func() time.Time

	mu      sync.RWMutex
	session *sessions.Session
	// generation changes on every install or clear. A refresh response is
	// only applied if the generation it started under is still current.
	generation  uint64
	scope       context.Context
	stopScope   context.CancelFunc
	stopChecker context.CancelFunc
	closed      bool
	wg          sync.WaitGroup

	refreshes singleflight.Group
}

// SessionManagerOption defines a function type to modify the SessionManager instance.
type SessionManagerOption func(*SessionManager)

// WithNowTime sets the clock used for token expiry checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionManagerOption {
	return func(sm *SessionManager) {
		sm.nowTime = nowFunc
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) SessionManagerOption {
	return func(sm *SessionManager) {
		sm.logger = logger
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(recorder metrics.Recorder) SessionManagerOption {
	return func(sm *SessionManager) {
		if recorder != nil {
			sm.metrics = recorder
		}
	}
}

// WithCheckInterval sets how often the background checker runs
func WithCheckInterval(interval time.Duration) SessionManagerOption {
	return func(sm *SessionManager) {
		if interval > 0 {
			sm.checkInterval = interval
		}
	}
}

// WithExpiryBuffer sets how far ahead of expiry a token counts as nearing expiry
func WithExpiryBuffer(buffer time.Duration) SessionManagerOption {
	return func(sm *SessionManager) {
		if buffer > 0 {
			sm.expiryBuffer = buffer
		}
	}
}

// NewSessionManager initializes a SessionManager. Call Start to restore the
// persisted session and begin background refresh checks.
func NewSessionManager(gw Gateway, store *sessions.CredentialStore, options ...SessionManagerOption) (*SessionManager, error) {
	if gw == nil {
		return nil, errors.New("[NewSessionManager] gateway is required")
	}
	if store == nil {
		return nil, errors.New("[NewSessionManager] credential store is required")
	}

	sm := &SessionManager{
		gateway:       gw,
		store:         store,
		metrics:       metrics.Nop{},
		logger:        log.Logger.With().Str("component", "session_manager").Logger(),
		checkInterval: DefaultCheckInterval,
		expiryBuffer:  jwt.DefaultExpiryBuffer,
		nowTime:       time.Now,
	}

	for _, opt := range options {
		opt(sm)
	}

	sm.inspector = jwt.NewInspector(jwt.WithNowFunc(sm.nowTime), jwt.WithExpiryBuffer(sm.expiryBuffer))
	return sm, nil
}

// Start restores any persisted session and binds background work to ctx.
// A persisted session whose roles are not recognized is discarded. If the
// restored access token is nearing expiry a refresh is started in the background.
func (sm *SessionManager) Start(ctx context.Context) error {
	sm.mu.Lock()
	if sm.closed {
		sm.mu.Unlock()
		return errors.New("[SessionManager.Start] session manager is closed")
	}
	if sm.scope != nil {
		sm.mu.Unlock()
		return errors.New("[SessionManager.Start] session manager already started")
	}
	sm.scope, sm.stopScope = context.WithCancel(ctx)

	var restored *sessions.Session
	if rec := sm.store.Load(); rec != nil {
		s := rec.Session
		if !s.Roles.IsRecognized() {
			sm.logger.Warn().Strs("roles", s.Roles.Strings()).Msg("discarding persisted session without a recognized role")
			sm.clearLocked()
		} else {
			sm.setLocked(s)
			sm.logger.Info().Strs("roles", s.Roles.Strings()).Msg("restored persisted session")
			if sm.inspector.IsNearingExpiry(s.AccessToken) {
				restored = utils.Ptr(s.Clone())
			}
		}
	}
	sm.mu.Unlock()

	if restored != nil {
		sm.spawn(func(ctx context.Context) {
			if _, err := sm.RefreshAccessToken(ctx, *restored); err != nil {
				sm.logger.Debug().Err(err).Msg("startup refresh did not complete")
			}
		})
	}
	return nil
}

// Close stops background work and waits for it to exit. The session itself
// is left in place; Close is teardown, not logout.
func (sm *SessionManager) Close() {
	sm.mu.Lock()
	if sm.closed {
		sm.mu.Unlock()
		return
	}
	sm.closed = true
	sm.stopCheckerLocked()
	if sm.stopScope != nil {
		sm.stopScope()
	}
	sm.mu.Unlock()

	sm.wg.Wait()
}

// Login authenticates with email and password. Only sessions holding a
// recognized role are installed; anything else leaves the manager signed out.
func (sm *SessionManager) Login(ctx context.Context, email, password string) Result {
	env, err := sm.gateway.Login(ctx, email, password)
	if err != nil {
		sm.logger.Warn().Err(err).Msg("login request failed")
		sm.clear()
		sm.metrics.RecordLogin(metrics.MethodPassword, metrics.OutcomeFailure)
		return failure(err, "", MsgLoginFailed)
	}

	if err := sm.installLogin(env); err != nil {
		sm.logger.Info().Err(err).Msg("login not accepted")
		sm.metrics.RecordLogin(metrics.MethodPassword, loginOutcome(err))
		return failure(err, loginMessage(env), MsgLoginFailed)
	}

	sm.metrics.RecordLogin(metrics.MethodPassword, metrics.OutcomeSuccess)
	return success(utils.FirstNonEmpty(env.Message, MsgLoginSuccess))
}

// GoogleLogin exchanges a Google ID token for a session. The gateway
// envelope is returned as-is so the caller can inspect its status. A nil
// error with a non-success envelope means the gateway refused the login.
func (sm *SessionManager) GoogleLogin(ctx context.Context, idToken string) (*gateway.LoginEnvelope, error) {
	return sm.socialLogin(metrics.MethodGoogle, func() (*gateway.LoginEnvelope, error) {
		return sm.gateway.GoogleLogin(ctx, idToken)
	})
}

// FacebookLogin exchanges a Facebook access token for a session. See GoogleLogin.
func (sm *SessionManager) FacebookLogin(ctx context.Context, accessToken string) (*gateway.LoginEnvelope, error) {
	return sm.socialLogin(metrics.MethodFacebook, func() (*gateway.LoginEnvelope, error) {
		return sm.gateway.FacebookLogin(ctx, accessToken)
	})
}

func (sm *SessionManager) socialLogin(method string, call func() (*gateway.LoginEnvelope, error)) (*gateway.LoginEnvelope, error) {
	env, err := call()
	if err != nil {
		sm.logger.Warn().Err(err).Str("method", method).Msg("social login request failed")
		sm.clear()
		sm.metrics.RecordLogin(method, metrics.OutcomeFailure)
		return nil, fmt.Errorf("[SessionManager.socialLogin] %s: %w", method, err)
	}

	if err := sm.installLogin(env); err != nil {
		sm.metrics.RecordLogin(method, loginOutcome(err))
		if errors.Is(err, apperrors.ErrGatewayRejected) {
			return env, nil
		}
		return env, fmt.Errorf("[SessionManager.socialLogin] %s: %w", method, err)
	}

	sm.metrics.RecordLogin(method, metrics.OutcomeSuccess)
	return env, nil
}

// installLogin validates a login envelope and installs the session it
// carries. Every failure leaves the manager signed out.
func (sm *SessionManager) installLogin(env *gateway.LoginEnvelope) error {
	if env == nil || !env.IsSuccess() || env.Data == nil {
		sm.clear()
		return fmt.Errorf("%w: %s", apperrors.ErrGatewayRejected, loginMessage(env))
	}

	s := sessions.Session{
		AccessToken:      env.Data.AccessToken,
		RefreshToken:     env.Data.RefreshToken,
		Roles:            roles.FromStrings(env.Data.Roles),
		ProfileCompleted: env.Data.ProfileCompleted,
	}
	if !s.Valid() {
		sm.clear()
		return fmt.Errorf("[SessionManager.installLogin] %w: login response is missing tokens", apperrors.ErrInvalidSession)
	}
	if !s.Roles.IsRecognized() {
		sm.clear()
		return fmt.Errorf("[SessionManager.installLogin] roles %v: %w", s.Roles.Strings(), apperrors.ErrAccessDenied)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if err := sm.installLocked(s); err != nil {
		sm.clearLocked()
		return fmt.Errorf("[SessionManager.installLogin] %w", err)
	}
	return nil
}

// Register creates an account. It never changes the session.
func (sm *SessionManager) Register(ctx context.Context, req gateway.RegistrationRequest) Result {
	resp, err := sm.gateway.Register(ctx, req)
	if err != nil {
		sm.logger.Warn().Err(err).Msg("registration request failed")
		return failure(err, "", MsgRegisterFailed)
	}
	if resp == nil {
		return Result{Message: MsgRegisterFailed}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Message: utils.FirstNonEmpty(resp.Message, MsgRegisterFailed)}
	}
	return success(utils.FirstNonEmpty(resp.Message, MsgRegisterSuccess))
}

// Logout notifies the gateway when a session exists, then clears local
// state unconditionally. Gateway errors are logged and swallowed. Calling
// Logout while signed out is a no-op apart from clearing the store.
func (sm *SessionManager) Logout(ctx context.Context) {
	sm.mu.RLock()
	accessToken := ""
	if sm.session != nil {
		accessToken = sm.session.AccessToken
	}
	sm.mu.RUnlock()

	sm.notifyLogout(ctx, accessToken)

	sm.mu.Lock()
	hadSession := sm.clearLocked()
	sm.mu.Unlock()

	if hadSession {
		sm.logger.Info().Msg("signed out")
	}
}

func (sm *SessionManager) notifyLogout(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	if err := sm.gateway.Logout(ctx, accessToken); err != nil {
		sm.logger.Warn().Err(err).Msg("gateway logout failed, clearing local session anyway")
	}
}

// logoutIfCurrent signs out only if no install or clear has happened since gen.
func (sm *SessionManager) logoutIfCurrent(ctx context.Context, gen uint64) {
	sm.mu.RLock()
	if sm.generation != gen || sm.session == nil {
		sm.mu.RUnlock()
		return
	}
	accessToken := sm.session.AccessToken
	sm.mu.RUnlock()

	sm.notifyLogout(ctx, accessToken)

	sm.mu.Lock()
	hadSession := false
	if sm.generation == gen {
		hadSession = sm.clearLocked()
	}
	sm.mu.Unlock()

	if hadSession {
		sm.logger.Info().Msg("signed out after failed refresh")
	}
}

// Refresh refreshes the current session's access token.
func (sm *SessionManager) Refresh(ctx context.Context) (string, error) {
	s, ok := sm.Snapshot()
	if !ok {
		return "", fmt.Errorf("[SessionManager.Refresh] %w", apperrors.ErrNoSession)
	}
	return sm.RefreshAccessToken(ctx, s)
}

// RefreshAccessToken exchanges the session's refresh token for a new access
// token and installs the result. Concurrent calls for the same refresh
// token share a single gateway request.
//
// A session without a refresh token is signed out without contacting the
// gateway. A rejected or failed refresh signs out, unless the session was
// replaced or cleared while the request was in flight, or the manager was closed.
//
// ctx only bounds how long this caller waits. The shared request keeps
// running for the other callers when ctx is canceled.
func (sm *SessionManager) RefreshAccessToken(ctx context.Context, s sessions.Session) (string, error) {
	if s.RefreshToken == "" {
		sm.logger.Warn().Msg("refresh requested without a refresh token, signing out")
		sm.Logout(ctx)
		return "", fmt.Errorf("[SessionManager.RefreshAccessToken] %w", apperrors.ErrMissingRefreshToken)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("[SessionManager.RefreshAccessToken] %w", err)
	}

	ch := sm.refreshes.DoChan(s.RefreshToken, func() (any, error) {
		refreshCtx, cancel := sm.refreshContext(ctx)
		defer cancel()
		return sm.refresh(refreshCtx, s)
	})

	select {
	case <-ctx.Done():
		sm.logger.Debug().Msg("stopped waiting for in-flight refresh")
		return "", fmt.Errorf("[SessionManager.RefreshAccessToken] %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			sm.logger.Debug().Msg("joined in-flight refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// refreshContext detaches a shared refresh from the cancellation of the
// caller that started it. Values such as the request id are kept. Close
// still cancels it through the manager scope.
func (sm *SessionManager) refreshContext(ctx context.Context) (context.Context, context.CancelFunc) {
	refreshCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	sm.mu.RLock()
	scope := sm.scope
	sm.mu.RUnlock()
	if scope == nil {
		return refreshCtx, cancel
	}

	stop := context.AfterFunc(scope, cancel)
	return refreshCtx, func() {
		stop()
		cancel()
	}
}

func (sm *SessionManager) refresh(ctx context.Context, s sessions.Session) (string, error) {
	sm.mu.RLock()
	gen := sm.generation
	current := sm.session
	var currentAccess string
	if current != nil {
		currentAccess = current.AccessToken
	}
	sm.mu.RUnlock()

	if current == nil || current.RefreshToken != s.RefreshToken {
		sm.metrics.RecordRefreshSkipped(metrics.OutcomeSuperseded)
		return "", fmt.Errorf("[SessionManager.refresh] %w", apperrors.ErrSessionSuperseded)
	}
	// An earlier refresh already replaced the caller's access token.
	if currentAccess != s.AccessToken && !sm.inspector.IsNearingExpiry(currentAccess) {
		return currentAccess, nil
	}

	start := time.Now()
	env, err := sm.gateway.Refresh(ctx, s.RefreshToken)
	elapsed := time.Since(start)
	if err == nil && (!env.IsSuccess() || env.Data == nil || env.Data.AccessToken == "") {
		err = fmt.Errorf("%w: %s", apperrors.ErrGatewayRejected, refreshMessage(env))
	}

	if err != nil {
		if ctx.Err() != nil {
			sm.metrics.RecordRefresh(metrics.OutcomeCanceled, elapsed)
			return "", fmt.Errorf("[SessionManager.refresh] canceled: %w", err)
		}
		sm.metrics.RecordRefresh(metrics.OutcomeFailure, elapsed)
		sm.logger.Warn().Err(err).Msg("token refresh failed")
		sm.logoutIfCurrent(ctx, gen)
		return "", fmt.Errorf("[SessionManager.refresh] %w", err)
	}

	sm.mu.Lock()
	if sm.generation != gen || sm.session == nil {
		sm.mu.Unlock()
		sm.metrics.RecordRefresh(metrics.OutcomeSuperseded, elapsed)
		sm.logger.Debug().Msg("discarding refresh response for a superseded session")
		return "", fmt.Errorf("[SessionManager.refresh] %w", apperrors.ErrSessionSuperseded)
	}
	next := sm.session.WithTokens(env.Data.AccessToken, utils.Value(env.Data.RefreshToken))
	if err := sm.installLocked(next); err != nil {
		sm.clearLocked()
		sm.mu.Unlock()
		sm.metrics.RecordRefresh(metrics.OutcomeFailure, elapsed)
		return "", fmt.Errorf("[SessionManager.refresh] %w", err)
	}
	sm.mu.Unlock()

	sm.metrics.RecordRefresh(metrics.OutcomeSuccess, elapsed)
	sm.logger.Debug().Msg("access token refreshed")
	return next.AccessToken, nil
}

// HasPermission reports whether the current session may act as role.
// Admin sessions are permitted everything.
func (sm *SessionManager) HasPermission(role roles.RoleType) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.session == nil {
		return false
	}
	return sm.session.Roles.Permits(role)
}

// Authenticated reports whether a session is installed.
func (sm *SessionManager) Authenticated() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.session != nil
}

// Snapshot returns a copy of the current session.
func (sm *SessionManager) Snapshot() (sessions.Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.session == nil {
		return sessions.Session{}, false
	}
	return sm.session.Clone(), true
}

// Freshness classifies the current access token. ok is false when signed out.
func (sm *SessionManager) Freshness() (freshness jwt.Freshness, expiry time.Time, ok bool) {
	s, ok := sm.Snapshot()
	if !ok {
		return jwt.Expired, time.Time{}, false
	}
	expiry, _ = sm.inspector.ExpiryOf(s.AccessToken)
	return sm.inspector.Classify(s.AccessToken, sm.inspector.Buffer()), expiry, true
}

// ProfileCompleted reads the persisted profile flag.
func (sm *SessionManager) ProfileCompleted() bool {
	completed, ok := sm.store.ProfileCompleted()
	if ok {
		return completed
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.session != nil && sm.session.ProfileCompleted
}

// MarkProfileCompleted updates the profile flag on the current session.
func (sm *SessionManager) MarkProfileCompleted(completed bool) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.session == nil {
		return fmt.Errorf("[SessionManager.MarkProfileCompleted] %w", apperrors.ErrNoSession)
	}
	next := sm.session.Clone()
	next.ProfileCompleted = completed
	if err := sm.store.Save(sessions.NewRecord(next)); err != nil {
		return fmt.Errorf("[SessionManager.MarkProfileCompleted] %w", err)
	}
	sm.session = &next
	return nil
}

// installLocked persists s and makes it the current session.
func (sm *SessionManager) installLocked(s sessions.Session) error {
	if err := sm.store.Save(sessions.NewRecord(s)); err != nil {
		return err
	}
	sm.setLocked(s)
	return nil
}

func (sm *SessionManager) setLocked(s sessions.Session) {
	c := s.Clone()
	sm.session = &c
	sm.generation++
	sm.startCheckerLocked()
}

func (sm *SessionManager) clear() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.clearLocked()
}

// clearLocked drops the session from memory and the store. It reports
// whether a session was installed; only those clears count as a logout.
func (sm *SessionManager) clearLocked() bool {
	hadSession := sm.session != nil
	if hadSession {
		sm.metrics.RecordLogout()
	}
	sm.session = nil
	sm.generation++
	sm.stopCheckerLocked()
	if err := sm.store.Clear(); err != nil {
		sm.logger.Error().Err(err).Msg("failed to clear credential store")
	}
	return hadSession
}

// spawn runs fn in the background, bound to the manager's scope.
func (sm *SessionManager) spawn(fn func(ctx context.Context)) bool {
	sm.mu.Lock()
	if sm.closed || sm.scope == nil {
		sm.mu.Unlock()
		return false
	}
	ctx := sm.scope
	sm.wg.Add(1)
	sm.mu.Unlock()

	go func() {
		defer sm.wg.Done()
		fn(ctx)
	}()
	return true
}

func loginMessage(env *gateway.LoginEnvelope) string {
	if env == nil {
		return ""
	}
	return env.Message
}

func refreshMessage(env *gateway.RefreshEnvelope) string {
	if env == nil {
		return "empty response"
	}
	return utils.FirstNonEmpty(env.Message, "refresh did not return an access token")
}

func loginOutcome(err error) string {
	if errors.Is(err, apperrors.ErrAccessDenied) {
		return metrics.OutcomeDenied
	}
	return metrics.OutcomeFailure
}
