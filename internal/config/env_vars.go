package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/utils"
)

const (
	portEnvVar        = "PORT"
	appNameVar        = "APP_NAME"
	folderEnvVar      = "FOLDER"
	logLevelEnvVar    = "LOG_LEVEL"
	storeDriverEnvVar = "STORE_DRIVER"
	envEnvVar         = "ENV"

	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

type EnvVars struct {
	file FileConfig
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, utils.FirstNonEmpty(e.file.Port, "8090"))
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, utils.FirstNonEmpty(e.file.AppName, "Fitness Session"))
}

func (e EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, utils.FirstNonEmpty(e.file.DataFolder, "./data"))
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelEnvVar, utils.FirstNonEmpty(e.file.LogLevel, "info")))
}

// GetStoreDriver returns the credential store backend: file, sqlite or memory.
// Unknown values fall back to file.
func (e EnvVars) GetStoreDriver() string {
	driver := strings.ToLower(GetEnv(storeDriverEnvVar, utils.FirstNonEmpty(e.file.StoreDriver, StoreDriverFile)))
	switch driver {
	case StoreDriverFile, StoreDriverSQLite, StoreDriverMemory:
		return driver
	}
	return StoreDriverFile
}

func (e EnvVars) GetEnv() string {
	return GetEnv(envEnvVar, utils.FirstNonEmpty(e.file.Env, "DEV"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvDuration reads a duration, falling back to the file value and then
// defaultValue when unset or unparseable.
func GetEnvDuration(envVar, fileValue string, defaultValue time.Duration) time.Duration {
	for _, v := range []string{os.Getenv(envVar), fileValue} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func GetEnvInt(envVar string, fileValue, defaultValue int) int {
	if v := os.Getenv(envVar); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	if fileValue > 0 {
		return fileValue
	}
	return defaultValue
}

func GetEnvFloat(envVar string, fileValue, defaultValue float64) float64 {
	if v := os.Getenv(envVar); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	if fileValue > 0 {
		return fileValue
	}
	return defaultValue
}
