package funding

import (
	"fmt"
	"math"

	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// COMPLETENESS
// =============================================================================

// Completeness reports how much of the required learner data is present.
type Completeness struct {
	IsComplete           bool     `json:"isComplete"`
	MissingFields        []string `json:"missingFields"`
	CompletionPercentage int      `json:"completionPercentage"`
	CanProceed           bool     `json:"canProceed"`
}

// CheckCompleteness looks only at presence, not validity.
func CheckCompleteness(raw RawLearner) Completeness {
	required := []struct {
		field   string
		present bool
	}{
		{"age", !raw.Age.IsEmpty()},
		{"employmentStatus", raw.EmploymentStatus != ""},
		{"qualificationLevel", raw.QualificationLevel != ""},
	}

	c := Completeness{MissingFields: []string{}}
	for _, r := range required {
		if !r.present {
			c.MissingFields = append(c.MissingFields, r.field)
		}
	}
	present := len(required) - len(c.MissingFields)
	c.CompletionPercentage = int(math.Round(100 * float64(present) / float64(len(required))))
	c.IsComplete = len(c.MissingFields) == 0
	c.CanProceed = c.CompletionPercentage >= 100
	return c
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

var displayNames = map[string]string{
	"age":                    "Age",
	"employmentStatus":       "Employment Status",
	"takeHomePay":            "Monthly Take-Home Pay",
	"qualificationLevel":     "Qualification Level",
	"benefits":               "Benefits",
	"partnerBenefitClaim":    "Partner Benefit Claim",
	"learningAimRef":         "Learning Aim Reference",
	"learningAimTitle":       "Course Title",
	"guidedLearningHours":    "Guided Learning Hours",
	"totalQualificationTime": "Total Qualification Time",
}

// FieldDisplayName returns the user-facing name of a field, or the field itself.
func FieldDisplayName(field string) string {
	if name, ok := displayNames[field]; ok {
		return name
	}
	return field
}

type ErrorDetail struct {
	Field       string `json:"field"`
	Message     string `json:"message"`
	DisplayName string `json:"displayName"`
}

type FormattedErrors struct {
	HasErrors bool          `json:"hasErrors"`
	Summary   string        `json:"summary"`
	Details   []ErrorDetail `json:"details"`
	Count     int           `json:"count"`
}

// FormatValidationErrors prepares errors for display.
func FormatValidationErrors(errs generic.ValidationErrors) FormattedErrors {
	out := FormattedErrors{Details: []ErrorDetail{}}
	if len(errs) == 0 {
		return out
	}

	out.HasErrors = true
	out.Count = len(errs)
	if len(errs) == 1 {
		out.Summary = "1 validation error found"
	} else {
		out.Summary = fmt.Sprintf("%d validation errors found", len(errs))
	}
	for _, e := range errs {
		out.Details = append(out.Details, ErrorDetail{
			Field:       e.Field,
			Message:     e.Message,
			DisplayName: FieldDisplayName(e.Field),
		})
	}
	return out
}
