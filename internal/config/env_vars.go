package config

import "os"

const (
	appNameVar   = "APP_NAME"
	prefsPathVar = "PREFS_PATH"
	timezoneVar  = "TIMEZONE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "LeetCode Progress")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetPrefsPath() string {
	return GetEnv(prefsPathVar, "./prefs.db")
}

// GetTimezone returns the IANA timezone name used for chart labels and
// forwarded to the backend. Empty means UTC.
func (EnvVars) GetTimezone() string {
	return GetEnv(timezoneVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
