package config

import (
	"strings"

	"github.com/jrsteele09/go-auth-client/internal/utils"
)

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type Cors struct {
	file CorsFile
}

var _ CorsConfig = Cors{}

type AllowedOrigins []string

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	for _, o := range a {
		if o == origin || o == "*" {
			return true
		}
	}
	return false
}

func (a AllowedOrigins) String() string {
	return strings.Join(a, ", ")
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	if v := GetEnv("ALLOWED_ORIGINS", ""); v != "" {
		return utils.SplitList(v)
	}
	if len(c.file.AllowedOrigins) > 0 {
		return c.file.AllowedOrigins
	}
	return AllowedOrigins{"http://localhost:3000"}
}

func (Cors) GetAllowedMethods() []string {
	return []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
}

func (Cors) GetAllowedHeaders() []string {
	return []string{"Content-Type", "Authorization", "X-Request-ID"}
}
