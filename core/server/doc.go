// Package server holds the HTTP serve-mode configuration.
//
// The serve command exposes the sync engine over HTTP for CI pipelines and
// dashboards; this package defines its settings (listen port and the API key
// protecting the endpoints). It is embedded by core/config and consumed by
// cmd/serve.
package server
