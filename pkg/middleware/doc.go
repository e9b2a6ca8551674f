// Package middleware provides HTTP middleware for authentication, request
// identification, and request logging with metrics.
package middleware
