package config

type Config interface {
	EnvConfig
	SessionConfig
	GatewayConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetStoreDriver() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Session
	Gateway
	Cors
}

// New returns a Config backed by environment variables and built-in defaults.
func New() Config {
	return newConfig(FileConfig{})
}

// Load reads the TOML file at path and returns a Config where environment
// variables take precedence over the file, and the file over defaults.
// An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	fc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newConfig(*fc), nil
}

func newConfig(fc FileConfig) Config {
	return mainConfig{
		EnvVars: EnvVars{file: fc},
		Session: Session{file: fc.Session},
		Gateway: Gateway{file: fc.Gateway},
		Cors:    Cors{file: fc.Cors},
	}
}
