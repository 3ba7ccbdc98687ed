package funding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

func TestCheckCompleteness(t *testing.T) {
	full := funding.CheckCompleteness(funding.RawLearner{
		Age:                funding.RawInt(30),
		EmploymentStatus:   "employed",
		QualificationLevel: "2",
	})
	assert.True(t, full.IsComplete)
	assert.True(t, full.CanProceed)
	assert.Equal(t, 100, full.CompletionPercentage)
	assert.Empty(t, full.MissingFields)

	partial := funding.CheckCompleteness(funding.RawLearner{Age: funding.RawInt(30)})
	assert.False(t, partial.IsComplete)
	assert.False(t, partial.CanProceed)
	assert.Equal(t, 33, partial.CompletionPercentage)
	assert.Equal(t, []string{"employmentStatus", "qualificationLevel"}, partial.MissingFields)

	empty := funding.CheckCompleteness(funding.RawLearner{})
	assert.Equal(t, 0, empty.CompletionPercentage)
	assert.Len(t, empty.MissingFields, 3)
}

func TestFormatValidationErrors(t *testing.T) {
	none := funding.FormatValidationErrors(nil)
	assert.False(t, none.HasErrors)
	assert.Empty(t, none.Summary)
	assert.NotNil(t, none.Details)

	one := funding.FormatValidationErrors(generic.ValidationErrors{
		{Field: "takeHomePay", Message: "Income cannot be negative"},
	})
	assert.Equal(t, "1 validation error found", one.Summary)
	assert.Equal(t, "Monthly Take-Home Pay", one.Details[0].DisplayName)

	many := funding.FormatValidationErrors(generic.ValidationErrors{
		{Field: "age", Message: "Age is required"},
		{Field: "learningAimTitle", Message: "Course title is required"},
		{Field: "fundingStreams", Message: "Unknown funding stream: x"},
	})
	assert.True(t, many.HasErrors)
	assert.Equal(t, 3, many.Count)
	assert.Equal(t, "3 validation errors found", many.Summary)
	assert.Equal(t, "Course Title", many.Details[1].DisplayName)
	assert.Equal(t, "fundingStreams", many.Details[2].DisplayName)
}
