// Package config loads and validates application configuration.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// config.yaml, an optional .env file and MASTERY_-prefixed environment variables
// (for example MASTERY_DATABASE_URL for database.url).
package config
