package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stable storage keys.
const (
	UserKey             = "user"
	ProfileCompletedKey = "isProfileCompleted"
)

// CredentialStore is the persistence adapter for the session record.
// It never interprets tokens; it only loads, saves and clears.
type CredentialStore struct {
	repo   Repo
	logger zerolog.Logger
}

// CredentialStoreOption modifies a CredentialStore.
type CredentialStoreOption func(*CredentialStore)

// WithStoreLogger sets the logger used for degraded loads.
func WithStoreLogger(logger zerolog.Logger) CredentialStoreOption {
	return func(cs *CredentialStore) {
		cs.logger = logger
	}
}

// NewCredentialStore creates a CredentialStore over repo.
func NewCredentialStore(repo Repo, options ...CredentialStoreOption) (*CredentialStore, error) {
	if repo == nil {
		return nil, errors.New("[NewCredentialStore] repo is required")
	}
	cs := &CredentialStore{
		repo:   repo,
		logger: log.Logger.With().Str("component", "credential_store").Logger(),
	}
	for _, opt := range options {
		opt(cs)
	}
	return cs, nil
}

// Load returns the persisted record, or nil when there is none. Unreadable,
// unparseable or partial records are reported as nil so that a damaged
// store degrades to "logged out".
func (cs *CredentialStore) Load() *Record {
	raw, ok, err := cs.repo.Get(UserKey)
	if err != nil {
		cs.logger.Warn().Err(err).Msg("reading persisted session")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		cs.logger.Debug().Err(err).Msg("discarding unparseable persisted session")
		return nil
	}
	if !session.Valid() {
		cs.logger.Debug().Msg("discarding partial persisted session")
		return nil
	}

	rec := &Record{Session: session, ProfileCompleted: session.ProfileCompleted}
	if completed, ok := cs.ProfileCompleted(); ok {
		rec.ProfileCompleted = completed
		rec.Session.ProfileCompleted = completed
	}
	return rec
}

// ProfileCompleted reads the companion flag without deserializing the
// session. ok is false when the flag is missing or unparseable.
func (cs *CredentialStore) ProfileCompleted() (completed bool, ok bool) {
	raw, found, err := cs.repo.Get(ProfileCompletedKey)
	if err != nil || !found {
		return false, false
	}
	completed, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return completed, true
}

// Save overwrites the persisted record. Records without both tokens are
// rejected with ErrInvalidSession.
func (cs *CredentialStore) Save(rec Record) error {
	if !rec.Session.Valid() {
		return fmt.Errorf("[CredentialStore.Save] %w", apperrors.ErrInvalidSession)
	}
	session := rec.Session.Clone()
	session.ProfileCompleted = rec.ProfileCompleted

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("[CredentialStore.Save] marshal: %w", err)
	}
	if err := cs.repo.Set(UserKey, string(data)); err != nil {
		return fmt.Errorf("[CredentialStore.Save] %w: %w", apperrors.ErrStoreUnavailable, err)
	}
	if err := cs.repo.Set(ProfileCompletedKey, strconv.FormatBool(rec.ProfileCompleted)); err != nil {
		// Do not leave a session blob without its companion flag.
		_ = cs.repo.Delete(UserKey)
		return fmt.Errorf("[CredentialStore.Save] %w: %w", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Clear removes every key owned by the session. Clearing an empty store is
// not an error.
func (cs *CredentialStore) Clear() error {
	if err := cs.repo.Delete(UserKey, ProfileCompletedKey); err != nil {
		return fmt.Errorf("[CredentialStore.Clear] %w: %w", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}
