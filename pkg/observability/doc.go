// Package observability provides structured logging, Prometheus metrics,
// and health probes for the course API.
package observability
