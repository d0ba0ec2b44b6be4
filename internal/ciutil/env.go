package ciutil

import (
	"log/slog"
	"os"
	"strings"
)

// Environment variable names read by the helpers of this package.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// Database connection environment variables, in lookup order
	EnvMasteryTestDBURL = "MASTERY_TEST_DB_URL"
	EnvDatabaseURL      = "DATABASE_URL"
)

// IsCI returns true if the current environment is a CI environment.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != "" ||
		os.Getenv(EnvCircleCI) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment
// variable in envVars, or defaultValue when none is set. Using anything but
// the first name logs a warning.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		val := os.Getenv(envVar)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("Using fallback environment variable",
				"used_var", envVar,
				"preferred_var", envVars[0],
				"value", MaskSensitiveValue(val),
			)
		}
		return val
	}
	return defaultValue
}

// MaskSensitiveValue hides the password of a database URL and the middle of
// anything that looks like a key or token, for logging.
func MaskSensitiveValue(value string) string {
	if scheme, rest, ok := strings.Cut(value, "://"); ok {
		if userinfo, host, ok := strings.Cut(rest, "@"); ok {
			if user, _, hasPassword := strings.Cut(userinfo, ":"); hasPassword {
				return scheme + "://" + user + ":****@" + host
			}
		}
		return value
	}

	lower := strings.ToLower(value)
	if len(value) > 8 && (strings.Contains(lower, "key") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "secret")) {
		return value[:4] + "****" + value[len(value)-4:]
	}

	return value
}
