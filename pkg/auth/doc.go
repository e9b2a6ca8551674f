// Package auth provides principal identity, JWT issuance/verification, and
// password hashing for the course API.
package auth
