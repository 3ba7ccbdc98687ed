/*
scenarios.go - Demo learners for testing and demonstrations

PURPOSE:
  Provides pre-built learner personas that exercise each funding stream.
  A scenario is assessed on demand; nothing is stored.

AVAILABLE SCENARIOS:
  school-leaver:      17, student, no qualifications -> 16-19 + apprenticeship
  jobseeker:          35, unemployed on JSA -> Free Courses for Jobs
  low-income-uc:      28, Universal Credit under the single threshold
  high-income-uc:     28, Universal Credit over the threshold -> adult only
  career-changer:     32, employed, Level 3 course -> Advanced Learner Loan
  young-apprentice:   16, employed -> 16-19 + apprenticeship

USAGE VIA API:
  GET  /api/scenarios
  POST /api/scenarios/career-changer/assess

ADDING NEW SCENARIOS:
  Add to the 'scenarios' slice. CourseRef must name a sample course or be empty.

SEE ALSO:
  - handlers.go: Assessment flow shared with POST /api/assessments
  - courses/sample.go: Sample catalogue
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/funding-engine/courses"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "school-leaver",
		Name:        "School Leaver",
		Description: "17 year old in full-time education with no qualifications yet",
		Learner: funding.RawLearner{
			Age:                funding.RawInt(17),
			EmploymentStatus:   string(funding.Student),
			QualificationLevel: string(funding.LevelNone),
		},
	},
	{
		ID:          "jobseeker",
		Name:        "Jobseeker",
		Description: "Unemployed adult claiming Jobseeker's Allowance",
		Learner: funding.RawLearner{
			Age:                funding.RawInt(35),
			EmploymentStatus:   string(funding.Unemployed),
			Benefits:           []string{string(funding.BenefitJSA)},
			QualificationLevel: string(funding.Level2),
		},
		CourseRef: "50117729",
	},
	{
		ID:          "low-income-uc",
		Name:        "Low Income (Universal Credit)",
		Description: "Part-time worker on Universal Credit earning under the single claim threshold",
		Learner: funding.RawLearner{
			Age:                funding.RawInt(28),
			EmploymentStatus:   string(funding.Employed),
			Benefits:           []string{string(funding.BenefitUniversalCredit)},
			TakeHomePay:        funding.RawInt(300),
			QualificationLevel: string(funding.Level1),
		},
	},
	{
		ID:          "high-income-uc",
		Name:        "Over Income Threshold",
		Description: "Universal Credit claimant whose take-home pay is above the single claim threshold",
		Learner: funding.RawLearner{
			Age:                funding.RawInt(28),
			EmploymentStatus:   string(funding.Employed),
			Benefits:           []string{string(funding.BenefitUniversalCredit)},
			TakeHomePay:        funding.RawInt(900),
			QualificationLevel: string(funding.Level2),
		},
	},
	{
		ID:          "career-changer",
		Name:        "Career Changer",
		Description: "Employed adult retraining on a Level 3 diploma",
		Learner: funding.RawLearner{
			Age:                funding.RawInt(32),
			EmploymentStatus:   string(funding.Employed),
			TakeHomePay:        funding.RawInt(2100),
			QualificationLevel: string(funding.Level2),
		},
		CourseRef: "60003456",
	},
	{
		ID:          "young-apprentice",
		Name:        "Young Apprentice",
		Description: "16 year old starting work with an employer",
		Learner: funding.RawLearner{
			Age:                funding.RawInt(16),
			EmploymentStatus:   string(funding.Employed),
			QualificationLevel: string(funding.Level1),
		},
		CourseRef: "50117729",
	},
}

// Scenarios returns a copy of the demo learners.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// AssessScenario evaluates a demo learner, against its course when it has one.
func (h *Handler) AssessScenario(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	s, ok := findScenario(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}

	learner, ok := h.validLearner(w, r, s.Learner)
	if !ok {
		return
	}

	if s.CourseRef == "" {
		assessment := h.Assessor.Evaluate(*learner, nil)
		h.metrics.observeAssessment("scenario", assessment)
		h.metrics.AssessmentLatency.Observe(time.Since(start).Seconds())
		h.logAssessment(r, assessment, zap.String("scenario", s.ID))
		writeJSON(w, http.StatusOK, h.wrap(assessment))
		return
	}

	course, ok := h.findCourse(w, r, s.CourseRef)
	if !ok {
		return
	}
	assessment := h.Assessor.Evaluate(*learner, course.Profile())
	h.metrics.observeAssessment("scenario", assessment)
	h.metrics.AssessmentLatency.Observe(time.Since(start).Seconds())
	h.logAssessment(r, assessment, zap.String("scenario", s.ID), zap.String("course", course.Ref()))

	// Scenarios assess at the start of the course's window so the demo
	// does not depend on today's date.
	startDate := course.LastNewStart
	if startDate.IsZero() {
		startDate = generic.DateOf(h.now())
	}
	options := courses.FundedOptions(course, assessment, startDate)
	writeJSON(w, http.StatusOK, CourseAssessmentResponse{
		AssessmentResponse: h.wrap(assessment),
		Course:             toCourseDTO(course),
		StartDate:          startDate,
		Options:            options,
		Available:          courses.AvailableOptions(options),
	})
}
