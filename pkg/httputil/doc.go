// Package httputil provides HTTP handler utilities for consistent error
// responses, JSON encoding/decoding, and request parsing.
package httputil
