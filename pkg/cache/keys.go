package cache

import (
	"fmt"
	"strings"

	"github.com/coursehq/courseapi/pkg/store"
)

// Key prefixes per keyspace. Every course write invalidates CoursePrefix;
// every user write invalidates UserPrefix.
const (
	CoursePrefix = "courses_"
	UserPrefix   = "users_"
)

// UsersAllKey caches the admin user listing
const UsersAllKey = UserPrefix + "all"

// CourseListKey derives the cache key for a course listing. The key encodes
// the effective filter (which already carries any owner restriction), never
// the raw principal id, so entries cannot cross an authorization boundary.
// Field order in the serialized filter is fixed to keep keys stable.
func CourseListKey(filter store.CourseFilter, opts store.ListOptions) string {
	opts = opts.Normalize()

	filterPart := "{}"
	if filter.OwnerID != nil {
		filterPart = fmt.Sprintf(`{"userId":%d}`, *filter.OwnerID)
	}

	return fmt.Sprintf("%s%s_%s_%d", CoursePrefix, filterPart, strings.ToLower(string(opts.Sort)), opts.Limit)
}
