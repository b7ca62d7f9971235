package config

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/utils"
)

type GatewayConfig interface {
	GetAPIBaseURL() string
	GetGatewayTimeout() time.Duration
	GetGatewayRateLimit() float64
	GetGatewayBurst() int
}

type Gateway struct {
	file GatewayFile
}

var _ GatewayConfig = Gateway{}

// GetAPIBaseURL returns the REST API root, e.g. "https://api.example.com/api".
// The identity endpoints live under {base}/Auth.
func (g Gateway) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv("API_BASE_URL", utils.FirstNonEmpty(g.file.BaseURL, "http://localhost:5000/api")), "/")
}

func (g Gateway) GetGatewayTimeout() time.Duration {
	return GetEnvDuration("GATEWAY_TIMEOUT", g.file.Timeout, 15*time.Second)
}

// GetGatewayRateLimit is requests per second towards the gateway, 0 disables throttling.
func (g Gateway) GetGatewayRateLimit() float64 {
	return GetEnvFloat("GATEWAY_RATE_LIMIT", g.file.RateLimit, 5)
}

func (g Gateway) GetGatewayBurst() int {
	return GetEnvInt("GATEWAY_BURST", g.file.Burst, 5)
}
