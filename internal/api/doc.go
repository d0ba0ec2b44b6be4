// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the practice services, translating HTTP concerns to scheduler
// operations. Every route except /health requires a bearer token whose
// subject is the learner id.
package api
