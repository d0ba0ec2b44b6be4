// Package testdb opens migrated databases for tests. Without configuration
// every call gets its own SQLite file; when a Postgres URL is configured
// through ciutil, every call gets its own schema on that server instead.
package testdb
