// Package config assembles the client configuration from environment
// variables with sensible defaults.
package config

type Config interface {
	EnvConfig
	APIConfig
	OIDCConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetPrefsPath() string
	GetTimezone() string
}

type APIConfig interface {
	GetAPIBaseURL() string
}

type OIDCConfig interface {
	GetOIDCIssuerURL() string
	GetOIDCClientID() string
	GetOIDCRedirectURL() string
	GetOIDCPostLogoutRedirectURL() string
	GetOIDCScopes() []string
}

type mainConfig struct {
	EnvVars
	API
	OIDC
}

func New() Config {
	return mainConfig{}
}
