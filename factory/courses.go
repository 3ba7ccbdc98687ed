package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/warp/funding-engine/courses"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// COURSE IMPORT
// =============================================================================

// CourseJSON is one entry of a course import file. The qualification fields
// use the same names as the validation input.
type CourseJSON struct {
	funding.RawQualification

	AwardOrgCode string `json:"awardOrgCode,omitempty"`
	Status       string `json:"status,omitempty"`
	Sector       string `json:"sector,omitempty"`
}

// CourseImportError reports every invalid entry of an import file.
type CourseImportError struct {
	Index int
	Ref   string
	Err   error
}

func (e *CourseImportError) Error() string {
	return fmt.Sprintf("course %d (%s): %v", e.Index, e.Ref, e.Err)
}

func (e *CourseImportError) Unwrap() error { return e.Err }

// CourseFactory converts import documents to catalogue courses.
type CourseFactory struct {
	validator *funding.Validator
}

// NewCourseFactory validates courses with the given thresholds' validator.
func NewCourseFactory(v *funding.Validator) *CourseFactory {
	return &CourseFactory{validator: v}
}

// Parse reads a JSON or YAML list of courses. Every course must carry a
// learning aim reference and title and pass qualification validation.
func (f *CourseFactory) Parse(data []byte, format Format) ([]courses.Course, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize courses: %w", err)
	}
	var entries []CourseJSON
	if err := json.Unmarshal(normalized, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse courses: %w", err)
	}

	out := make([]courses.Course, 0, len(entries))
	for i, cj := range entries {
		c, err := f.FromJSON(cj)
		if err != nil {
			return nil, &CourseImportError{Index: i, Ref: cj.LearningAimRef, Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

// FromJSON validates and converts one course.
func (f *CourseFactory) FromJSON(cj CourseJSON) (courses.Course, error) {
	if r := f.validator.LearningAimReference(cj.LearningAimRef); !r.IsValid {
		return courses.Course{}, fieldError("learningAimRef", r.Error)
	}
	if r := f.validator.CourseTitle(cj.LearningAimTitle); !r.IsValid {
		return courses.Course{}, fieldError("learningAimTitle", r.Error)
	}
	res := f.validator.Qualification(cj.RawQualification)
	if !res.IsValid {
		return courses.Course{}, res.Err()
	}
	return courses.Course{
		QualificationProfile: *res.Sanitized,
		AwardOrgCode:         strings.ToUpper(strings.TrimSpace(cj.AwardOrgCode)),
		Status:               strings.TrimSpace(cj.Status),
		Sector:               strings.TrimSpace(cj.Sector),
	}, nil
}

// ToJSON converts a course to its import representation.
func (f *CourseFactory) ToJSON(c courses.Course) CourseJSON {
	raw := funding.RawQualification{
		LearningAimRef:           c.LearningAimRef,
		LearningAimTitle:         c.LearningAimTitle,
		QualificationLevel:       string(c.Level),
		Compatible16To19:         c.Compatible16To19,
		CompatibleASF:            c.CompatibleASF,
		CompatibleApprenticeship: c.CompatibleApprenticeship,
		GuidedLearningHours:      funding.RawInt(c.GuidedLearningHours),
		TotalQualificationTime:   funding.RawInt(c.TotalQualificationTime),
		LastNewStartDate:         c.LastNewStart.String(),
		CertificationEndDate:     c.CertificationEnd.String(),
	}
	if len(c.FundingStreams) > 0 {
		raw.FundingStreams = make(map[string]funding.StreamFunding, len(c.FundingStreams))
		for id, sf := range c.FundingStreams {
			raw.FundingStreams[string(id)] = sf
		}
	}
	return CourseJSON{
		RawQualification: raw,
		AwardOrgCode:     c.AwardOrgCode,
		Status:           c.Status,
		Sector:           c.Sector,
	}
}

// LoadCoursesFile reads a course import file.
func LoadCoursesFile(path string, v *funding.Validator) ([]courses.Course, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read courses: %w", err)
	}
	return NewCourseFactory(v).Parse(data, format)
}

func fieldError(field, msg string) error {
	return generic.ValidationErrors{{Field: field, Message: msg}}
}
