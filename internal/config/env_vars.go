package config

type EnvVars struct {
	AppName   string `env:"SGO_APP_NAME" envDefault:"SGO Connect"`
	Env       string `env:"SGO_ENV" envDefault:"DEV"`
	LogLevel  string `env:"SGO_LOG_LEVEL" envDefault:"info"`
	RegionURL string `env:"SGO_REGION_URL"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetRegionURL returns the base URL of the regional school portal (e.g. "https://sgo.example.ru/").
// The login page and the profile endpoint both live under it.
func (e EnvVars) GetRegionURL() string {
	return e.RegionURL
}
