// Package task runs the periodic background jobs of the service. Jobs are
// scheduled with gocron and stopped together on shutdown.
package task
