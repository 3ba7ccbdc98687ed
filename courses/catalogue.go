package courses

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// CATALOGUE
// =============================================================================

// Catalogue reads and writes courses through a CourseStore.
type Catalogue struct {
	store generic.CourseStore
}

func NewCatalogue(store generic.CourseStore) *Catalogue {
	return &Catalogue{store: store}
}

// NormalizeRef trims and uppercases a learning aim reference.
func NormalizeRef(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// Save inserts or replaces a course.
func (c *Catalogue) Save(ctx context.Context, course Course) error {
	course.LearningAimRef = NormalizeRef(course.LearningAimRef)
	if course.LearningAimRef == "" {
		return fmt.Errorf("%w: course without learning aim reference", generic.ErrValidation)
	}
	payload, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("encode course %s: %w", course.LearningAimRef, err)
	}
	return c.store.SaveCourse(ctx, generic.CourseRecord{
		Ref:     course.LearningAimRef,
		Title:   course.LearningAimTitle,
		Level:   string(course.Level),
		Payload: payload,
	})
}

// SaveAll saves courses in order and stops at the first failure.
func (c *Catalogue) SaveAll(ctx context.Context, courses []Course) error {
	for _, course := range courses {
		if err := c.Save(ctx, course); err != nil {
			return err
		}
	}
	return nil
}

// Get returns generic.ErrCourseNotFound for an unknown reference and
// validation errors for one that is not a learning aim reference at all.
func (c *Catalogue) Get(ctx context.Context, ref string) (Course, error) {
	r := funding.ValidateLearningAimReference(ref)
	if !r.IsValid {
		return Course{}, generic.ValidationErrors{{Field: "learningAimRef", Message: r.Error}}
	}
	rec, err := c.store.GetCourse(ctx, r.Sanitized)
	if err != nil {
		return Course{}, err
	}
	return decode(rec)
}

// List returns every course ordered by reference.
func (c *Catalogue) List(ctx context.Context) ([]Course, error) {
	recs, err := c.store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return decodeAll(recs)
}

// Search matches term against reference or title, case-insensitively.
func (c *Catalogue) Search(ctx context.Context, term string) ([]Course, error) {
	term = SanitizeSearchTerm(term)
	if term == "" {
		return []Course{}, nil
	}
	recs, err := c.store.SearchCourses(ctx, term)
	if err != nil {
		return nil, err
	}
	return decodeAll(recs)
}

// Seed loads the sample courses.
func (c *Catalogue) Seed(ctx context.Context) error {
	return c.SaveAll(ctx, SampleCourses())
}

func decode(rec generic.CourseRecord) (Course, error) {
	var course Course
	if err := json.Unmarshal(rec.Payload, &course); err != nil {
		return Course{}, fmt.Errorf("decode course %s: %w", rec.Ref, err)
	}
	return course, nil
}

func decodeAll(recs []generic.CourseRecord) ([]Course, error) {
	out := make([]Course, 0, len(recs))
	for _, rec := range recs {
		course, err := decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, course)
	}
	return out, nil
}
