/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Learner and course
  input arrives as funding.RawLearner / funding.RawQualification so the
  validator sees exactly what the client sent (strings, numbers, nulls).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Streams:     StreamDTO
  Validation:  ValidateRequest, ValidateResponse
  Assessment:  AssessRequest, AssessmentResponse, CourseAssessmentResponse
  Courses:     CourseDTO
  Postcodes:   PostcodeDTO
  Scenarios:   ScenarioDTO

VALIDATION:
  Validation is done by funding.Validator in handlers. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - funding/raw.go: Untrusted input types
*/
package api

import (
	"time"

	"github.com/warp/funding-engine/courses"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// StreamDTO describes one rule of the table.
type StreamDTO struct {
	ID       generic.StreamID `json:"id"`
	Title    string           `json:"title"`
	Priority int              `json:"priority"`
}

// ValidateRequest checks a learner and, optionally, a qualification.
type ValidateRequest struct {
	Learner       funding.RawLearner        `json:"learner"`
	Qualification *funding.RawQualification `json:"qualification,omitempty"`
}

// ValidateResponse always returns 200; IsValid says whether an assessment would be accepted.
type ValidateResponse struct {
	IsValid       bool                             `json:"isValid"`
	Learner       funding.LearnerValidation        `json:"learner"`
	Qualification *funding.QualificationValidation `json:"qualification,omitempty"`
	Completeness  funding.Completeness             `json:"completeness"`
	Formatted     funding.FormattedErrors          `json:"formatted"`
}

// AssessRequest is the body of POST /api/assessments.
type AssessRequest struct {
	Learner       funding.RawLearner        `json:"learner"`
	Qualification *funding.RawQualification `json:"qualification,omitempty"`
}

// CourseAssessmentRequest is the body of POST /api/courses/{lar}/assessments.
// StartDate defaults to today.
type CourseAssessmentRequest struct {
	Learner   funding.RawLearner `json:"learner"`
	StartDate string             `json:"startDate,omitempty"`
}

// AssessmentResponse wraps an assessment with an id for client-side correlation.
// Assessments are not stored; the id cannot be looked up later.
type AssessmentResponse struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"createdAt"`
	Assessment funding.Assessment `json:"assessment"`
}

// CourseAssessmentResponse adds the learner's options on one course.
type CourseAssessmentResponse struct {
	AssessmentResponse
	Course    CourseDTO              `json:"course"`
	StartDate generic.Date           `json:"startDate"`
	Options   []courses.FundedOption `json:"options"`
	Available []courses.FundedOption `json:"available"`
}

// CourseDTO represents a catalogue course.
type CourseDTO struct {
	courses.Course
	Active bool `json:"active"`
}

// PostcodeDTO is a resolved postcode.
type PostcodeDTO struct {
	Postcode   string `json:"postcode"`
	Normalized string `json:"normalized"`
	Authority  string `json:"authority"`
}

// ScenarioDTO represents a demo learner.
type ScenarioDTO struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Learner     funding.RawLearner `json:"learner"`
	CourseRef   string             `json:"courseRef,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func toCourseDTO(c courses.Course) CourseDTO {
	return CourseDTO{Course: c, Active: c.IsActive()}
}
