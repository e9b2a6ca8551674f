// Package authz holds the authorization decision core: the role policy and
// the per-entity access rules. Everything here is pure; no function touches
// storage, so the rules are testable without a live store.
package authz
