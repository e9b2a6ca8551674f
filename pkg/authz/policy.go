package authz

import (
	"github.com/coursehq/courseapi/pkg/apperrors"
	"github.com/coursehq/courseapi/pkg/auth"
)

// Authorize decides whether a principal passes a role gate. It is total and
// side-effect-free:
//   - a nil principal (unauthenticated) is always denied
//   - an empty required set admits any authenticated principal
//   - otherwise the principal's role must be in the required set
func Authorize(p *auth.Principal, required []auth.Role) bool {
	if p == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if p.Role == role {
			return true
		}
	}
	return false
}

// RequireAdmin is shorthand for an ADMIN-only gate
func RequireAdmin(p *auth.Principal) bool {
	return Authorize(p, []auth.Role{auth.RoleAdmin})
}

// Check is the error-returning form of Authorize used by the mutation
// handlers: a missing principal is Unauthorized, an authenticated principal
// outside the required set is Forbidden. It fails closed before any store
// access.
func Check(p *auth.Principal, required []auth.Role) error {
	if p == nil {
		return apperrors.Unauthorized("authentication required")
	}
	if !Authorize(p, required) {
		return apperrors.Forbidden("insufficient role")
	}
	return nil
}
