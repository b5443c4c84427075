// Package utils provides common utility functions for the emoji-sync
// application. It includes helpers for formatting sizes and ages in CLI and
// API output that don't fit into domain-specific packages.
package utils
