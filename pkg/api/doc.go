// Package api exposes the HTTP surface of the course service: credential
// endpoints, course CRUD, and collection reads. Handlers translate requests
// into service calls and map service errors onto HTTP statuses; all
// authorization decisions live in the services.
package api
