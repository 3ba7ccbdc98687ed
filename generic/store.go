/*
store.go - Persistence interfaces for static reference data

PURPOSE:
  Defines the interface between the domain logic and reference data
  storage. Two datasets exist: the course catalogue and the postcode to
  funding authority mapping. Both are loaded at startup and read-only on
  the assessment path. Assessments themselves are never stored.

KEY INTERFACES:
  CourseStore:    Course records keyed by learning aim reference
  AuthorityStore: Normalized postcode -> authority label

COURSE RECORDS:
  The store is domain-agnostic. It indexes the fields needed for search
  (reference, title, level) and keeps the full course as an opaque JSON
  payload that the courses package owns.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - courses/catalogue.go: Uses CourseStore
  - postcode/resolver.go: Built from AuthorityStore contents
*/
package generic

import "context"

// =============================================================================
// COURSE STORE
// =============================================================================

// CourseRecord is a stored course. Ref is uppercase and unique.
type CourseRecord struct {
	Ref     string
	Title   string
	Level   string
	Payload []byte
}

// CourseStore persists course records.
type CourseStore interface {
	// SaveCourse inserts or replaces a course by Ref.
	SaveCourse(ctx context.Context, rec CourseRecord) error

	// GetCourse returns ErrCourseNotFound when ref is unknown.
	GetCourse(ctx context.Context, ref string) (CourseRecord, error)

	// ListCourses returns all courses ordered by Ref.
	ListCourses(ctx context.Context) ([]CourseRecord, error)

	// SearchCourses returns courses whose Ref or Title contains term,
	// case-insensitively, ordered by Ref. An empty term matches nothing.
	SearchCourses(ctx context.Context, term string) ([]CourseRecord, error)
}

// =============================================================================
// AUTHORITY STORE
// =============================================================================

// AuthorityStore persists the flat postcode mapping. Keys are normalized.
type AuthorityStore interface {
	// SaveAuthorities upserts every entry atomically.
	SaveAuthorities(ctx context.Context, entries map[string]string) error

	// LookupAuthority reports a miss with ok=false, not an error.
	LookupAuthority(ctx context.Context, postcode string) (label string, ok bool, err error)

	// AllAuthorities returns a copy of the full mapping.
	AllAuthorities(ctx context.Context) (map[string]string, error)

	CountAuthorities(ctx context.Context) (int, error)
}
