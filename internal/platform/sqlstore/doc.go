// Package sqlstore implements the store interfaces on top of sqlx.
//
// The same queries run against PostgreSQL (through the pgx stdlib driver) and
// against an embedded SQLite file (through modernc.org/sqlite). Queries are
// written with '?' placeholders and rebound for the active driver, timestamps
// are always written in UTC, and set-valued columns are stored as JSON text so
// that neither dialect needs array support.
package sqlstore
