// Package users implements account registration, login, and the admin user
// listing. Registration validates against the declared field constraints and
// always stores the USER role; login exchanges credentials for a signed
// bearer token.
package users
