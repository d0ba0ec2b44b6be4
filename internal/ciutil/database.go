package ciutil

import (
	"fmt"
	"log/slog"
	"net/url"
)

// Defaults applied to local Postgres URLs in CI.
const (
	StandardCIPort     = "5432"
	StandardCIDatabase = "mastery_test"
	StandardCIOptions  = "sslmode=disable"
)

// GetTestDatabaseURL returns the Postgres URL integration tests should use,
// or "" when none is configured. MASTERY_TEST_DB_URL is preferred over
// DATABASE_URL. In CI a local URL missing a port, database or options gets
// the standard values filled in.
func GetTestDatabaseURL(logger *slog.Logger) string {
	dbURL := GetEnvWithFallbacks([]string{EnvMasteryTestDBURL, EnvDatabaseURL}, "", logger)
	if dbURL == "" {
		if logger != nil {
			logger.Debug("No test database URL configured")
		}
		return ""
	}

	if !IsCI() {
		return dbURL
	}

	standardized, err := standardizeDatabaseURL(dbURL)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to standardize database URL",
				"error", err,
				"url", MaskSensitiveValue(dbURL))
		}
		return dbURL
	}
	if standardized != dbURL && logger != nil {
		logger.Info("Standardized database URL for CI environment",
			"original", MaskSensitiveValue(dbURL),
			"standardized", MaskSensitiveValue(standardized))
	}
	return standardized
}

func standardizeDatabaseURL(dbURL string) (string, error) {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return dbURL, nil
	}

	host := parsed.Hostname()
	if (host == "localhost" || host == "127.0.0.1") && parsed.Port() == "" {
		parsed.Host = host + ":" + StandardCIPort
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = "/" + StandardCIDatabase
	}
	if parsed.RawQuery == "" {
		parsed.RawQuery = StandardCIOptions
	}
	return parsed.String(), nil
}
