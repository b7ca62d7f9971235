package config

import "time"

type SessionConfig interface {
	GetRefreshCheckInterval() time.Duration
	GetExpiryBuffer() time.Duration
}

type Session struct {
	file SessionFile
}

var _ SessionConfig = Session{}

// GetRefreshCheckInterval is the period of the access token expiry check.
func (s Session) GetRefreshCheckInterval() time.Duration {
	return GetEnvDuration("REFRESH_CHECK_INTERVAL", s.file.RefreshCheckInterval, 60*time.Second)
}

// GetExpiryBuffer is how long before expiry a token counts as nearing expiry.
func (s Session) GetExpiryBuffer() time.Duration {
	return GetEnvDuration("EXPIRY_BUFFER", s.file.ExpiryBuffer, 5*time.Minute)
}
