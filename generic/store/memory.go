// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	courses     map[string]generic.CourseRecord
	authorities map[string]string
}

var (
	_ generic.CourseStore    = (*Memory)(nil)
	_ generic.AuthorityStore = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		courses:     make(map[string]generic.CourseRecord),
		authorities: make(map[string]string),
	}
}

// SaveCourse inserts or replaces a course by Ref.
func (m *Memory) SaveCourse(_ context.Context, rec generic.CourseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	payload := make([]byte, len(rec.Payload))
	copy(payload, rec.Payload)
	rec.Payload = payload
	m.courses[rec.Ref] = rec
	return nil
}

func (m *Memory) GetCourse(_ context.Context, ref string) (generic.CourseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.courses[ref]
	if !ok {
		return generic.CourseRecord{}, generic.ErrCourseNotFound
	}
	return rec, nil
}

func (m *Memory) ListCourses(_ context.Context) ([]generic.CourseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked(func(generic.CourseRecord) bool { return true }), nil
}

func (m *Memory) SearchCourses(_ context.Context, term string) ([]generic.CourseRecord, error) {
	if term == "" {
		return []generic.CourseRecord{}, nil
	}
	needle := strings.ToLower(term)

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked(func(rec generic.CourseRecord) bool {
		return strings.Contains(strings.ToLower(rec.Ref), needle) ||
			strings.Contains(strings.ToLower(rec.Title), needle)
	}), nil
}

func (m *Memory) sortedLocked(keep func(generic.CourseRecord) bool) []generic.CourseRecord {
	result := []generic.CourseRecord{}
	for _, rec := range m.courses {
		if keep(rec) {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Ref < result[j].Ref })
	return result
}

// =============================================================================
// AUTHORITIES
// =============================================================================

func (m *Memory) SaveAuthorities(_ context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.authorities[k] = v
	}
	return nil
}

func (m *Memory) LookupAuthority(_ context.Context, postcode string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	label, ok := m.authorities[postcode]
	return label, ok, nil
}

func (m *Memory) AllAuthorities(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.authorities))
	for k, v := range m.authorities {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) CountAuthorities(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.authorities), nil
}
