package authz

import (
	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/store"
)

// CourseFilter returns the visibility filter a principal's course queries
// must carry. Admins see everything; everyone else sees only rows they own.
// The filter shapes the store query itself so invisible rows never leave the
// store.
func CourseFilter(p *auth.Principal) store.CourseFilter {
	if p.IsAdmin() {
		return store.CourseFilter{}
	}
	owner := p.ID
	return store.CourseFilter{OwnerID: &owner}
}

// CanMutateCourse decides whether a principal may update or delete a course
// owned by ownerID. Admins may mutate anything; others must own the row.
func CanMutateCourse(p *auth.Principal, ownerID int64) bool {
	if p == nil {
		return false
	}
	return p.IsAdmin() || p.ID == ownerID
}

// ResolveCourseOwner determines who owns a course being created. An admin
// may name an explicit target owner; anyone else becomes the owner
// themselves, and a supplied target is ignored rather than rejected.
func ResolveCourseOwner(p *auth.Principal, requestedOwnerID *int64) int64 {
	if p.IsAdmin() && requestedOwnerID != nil {
		return *requestedOwnerID
	}
	return p.ID
}

// CollectionFilter returns the visibility filter for collection queries.
// A collection is visible to a non-admin iff at least one of its courses is
// owned by the principal; nested course listings for non-admins carry the
// same owner restriction so collection reads cannot widen course visibility.
func CollectionFilter(p *auth.Principal) store.CollectionFilter {
	if p.IsAdmin() {
		return store.CollectionFilter{}
	}
	owner := p.ID
	return store.CollectionFilter{OwnerCourseUserID: &owner}
}
