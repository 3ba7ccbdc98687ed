package funding_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// SINGLE-FIELD VALIDATOR TESTS
// =============================================================================

func TestValidateAge(t *testing.T) {
	tests := []struct {
		raw   funding.RawField
		valid bool
		want  int
		err   string
	}{
		{raw: funding.RawField{}, err: "Age is required"},
		{raw: funding.Raw(""), err: "Age is required"},
		{raw: funding.Raw("abc"), err: "Age must be a valid number"},
		{raw: funding.RawInt(13), err: "Age must be between 14 and 100"},
		{raw: funding.RawInt(101), err: "Age must be between 14 and 100"},
		{raw: funding.RawInt(16), valid: true, want: 16},
		{raw: funding.RawInt(100), valid: true, want: 100},
		{raw: funding.RawInt(14), valid: true, want: 14},
		{raw: funding.Raw("19 years"), valid: true, want: 19},
		{raw: funding.Raw("99999999999999999999"), err: "Age must be between 14 and 100"},
	}

	for _, tt := range tests {
		got := funding.ValidateAge(tt.raw)
		assert.Equal(t, tt.valid, got.IsValid, "age %q", tt.raw.String())
		assert.Equal(t, tt.err, got.Error, "age %q", tt.raw.String())
		if tt.valid {
			assert.Equal(t, tt.want, got.Sanitized)
		}
	}
}

func TestValidateEmploymentStatus(t *testing.T) {
	assert.Equal(t, "Employment status is required", funding.ValidateEmploymentStatus("").Error)
	assert.Equal(t, "Invalid employment status", funding.ValidateEmploymentStatus("retired").Error)
	for _, s := range funding.AllEmploymentStatuses() {
		got := funding.ValidateEmploymentStatus(string(s))
		assert.True(t, got.IsValid, s)
		assert.Equal(t, s, got.Sanitized)
	}
}

func TestValidateQualificationLevel(t *testing.T) {
	assert.Equal(t, "Qualification level is required", funding.ValidateQualificationLevel("").Error)
	assert.Equal(t, "Invalid qualification level", funding.ValidateQualificationLevel("5").Error)
	assert.True(t, funding.ValidateQualificationLevel("4+").IsValid)
}

func TestValidateMonthlyIncome(t *testing.T) {
	empty := funding.ValidateMonthlyIncome(funding.RawField{})
	assert.True(t, empty.IsValid)
	assert.True(t, empty.Sanitized.IsZero())

	assert.Equal(t, "Income must be a valid number", funding.ValidateMonthlyIncome(funding.Raw("lots")).Error)
	assert.Equal(t, "Income cannot be negative", funding.ValidateMonthlyIncome(funding.RawInt(-1)).Error)
	assert.Equal(t, "Income seems unusually high - please check", funding.ValidateMonthlyIncome(funding.RawInt(50001)).Error)
	assert.Equal(t, "Income seems unusually high - please check",
		funding.ValidateMonthlyIncome(funding.Raw("99999999999999999999")).Error)

	ok := funding.ValidateMonthlyIncome(funding.RawInt(50000))
	assert.True(t, ok.IsValid)
	assert.True(t, ok.Sanitized.Equal(generic.NewMoney(50000)))
}

func TestValidateBenefits(t *testing.T) {
	got := funding.ValidateBenefits([]string{"universal-credit", "jsa", "jsa"})
	assert.True(t, got.IsValid)
	assert.Equal(t, funding.BenefitSet{funding.BenefitJSA, funding.BenefitUniversalCredit}, got.Sanitized)

	bad := funding.ValidateBenefits([]string{"jsa", "dla", "xyz"})
	assert.False(t, bad.IsValid)
	assert.Equal(t, "Invalid benefit codes: dla, xyz", bad.Error)

	none := funding.ValidateBenefits(nil)
	assert.True(t, none.IsValid)
	assert.Empty(t, none.Sanitized)
}

func TestValidateLearningAimReference(t *testing.T) {
	got := funding.ValidateLearningAimReference("  6000345a ")
	assert.True(t, got.IsValid)
	assert.Equal(t, "6000345A", got.Sanitized)

	assert.Equal(t, "Learning Aim Reference is required", funding.ValidateLearningAimReference("").Error)
	assert.Equal(t, "Learning Aim Reference must be 8 alphanumeric characters",
		funding.ValidateLearningAimReference("1234567").Error)
	assert.Equal(t, "Learning Aim Reference must be 8 alphanumeric characters",
		funding.ValidateLearningAimReference("1234-567").Error)
}

func TestValidateCourseTitle(t *testing.T) {
	assert.Equal(t, "Course title is required", funding.ValidateCourseTitle("").Error)
	assert.Equal(t, "Course title must be at least 5 characters", funding.ValidateCourseTitle(" BTEC ").Error)
	assert.Equal(t, "Course title must be less than 200 characters",
		funding.ValidateCourseTitle(strings.Repeat("a", 201)).Error)

	got := funding.ValidateCourseTitle("  Level 2 Certificate ")
	assert.True(t, got.IsValid)
	assert.Equal(t, "Level 2 Certificate", got.Sanitized)
}

// =============================================================================
// LEARNER VALIDATION TESTS
// =============================================================================

func TestValidateLearner_Valid(t *testing.T) {
	raw := funding.RawLearner{
		Age:                funding.Raw("25"),
		EmploymentStatus:   "unemployed",
		Benefits:           []string{"esa", "jsa", "esa"},
		QualificationLevel: "3",
		Nationality:        " UK ",
		Postcode:           "sw1a 1aa",
	}

	got := funding.ValidateLearner(raw)

	require.True(t, got.IsValid)
	require.NotNil(t, got.Sanitized)
	assert.NotNil(t, got.Errors)
	assert.Empty(t, got.Errors)
	assert.Equal(t, generic.NewMeasure(25), got.Sanitized.Age)
	assert.Equal(t, funding.BenefitSet{funding.BenefitJSA, funding.BenefitESA}, got.Sanitized.Benefits)
	assert.True(t, got.Sanitized.TakeHomePay.IsZero())
	assert.Equal(t, "UK", got.Sanitized.Nationality)
	assert.NoError(t, got.Err())
}

func TestValidateLearner_ReportsErrorsInFieldOrder(t *testing.T) {
	raw := funding.RawLearner{
		Age:         funding.Raw("abc"),
		TakeHomePay: funding.RawInt(-5),
		Benefits:    []string{"nope"},
	}

	got := funding.ValidateLearner(raw)

	assert.False(t, got.IsValid)
	assert.Nil(t, got.Sanitized)
	assert.Equal(t, []string{"age", "employmentStatus", "qualificationLevel", "takeHomePay", "benefits"}, got.Errors.Fields())
	assert.ErrorIs(t, got.Err(), generic.ErrValidation)
}

func TestValidateLearner_JSONShape(t *testing.T) {
	var raw funding.RawLearner
	require.NoError(t, json.Unmarshal([]byte(`{"age": 13, "employmentStatus": "employed", "qualificationLevel": "2", "takeHomePay": null}`), &raw))

	body, err := json.Marshal(funding.ValidateLearner(raw))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"isValid": false,
		"sanitizedData": null,
		"errors": [{"field": "age", "message": "Age must be between 14 and 100"}]
	}`, string(body))
}

func TestNewValidator_UsesThresholds(t *testing.T) {
	th := funding.DefaultThresholds()
	th.MinValidAge = 16
	v, err := funding.NewValidator(th)
	require.NoError(t, err)

	assert.Equal(t, "Age must be between 16 and 100", v.Age(funding.RawInt(15)).Error)
}

// =============================================================================
// QUALIFICATION VALIDATION TESTS
// =============================================================================

func TestValidateQualification_Valid(t *testing.T) {
	raw := funding.RawQualification{
		LearningAimRef:     " 60003456 ",
		LearningAimTitle:   "BTEC Level 3 National Diploma in Information Technology",
		QualificationLevel: "3",
		FundingStreams: map[string]funding.StreamFunding{
			"adult":          {Funded: true, Rate: generic.NewMoney(2840)},
			"apprenticeship": {Funded: false, Rate: generic.ZeroMoney()},
		},
		GuidedLearningHours:    funding.RawInt(720),
		TotalQualificationTime: funding.Raw("1080"),
		LastNewStartDate:       "2025-07-31",
		CertificationEndDate:   "2026-12-31",
	}

	got := funding.ValidateQualification(raw)

	require.True(t, got.IsValid, got.Errors)
	q := got.Sanitized
	assert.Equal(t, "60003456", q.LearningAimRef)
	assert.Equal(t, funding.Level3, q.Level)
	assert.Equal(t, 720, q.GuidedLearningHours)
	assert.Equal(t, 1080, q.TotalQualificationTime)
	assert.True(t, q.Funding(funding.StreamAdult).Funded)
	assert.False(t, q.Funding(funding.Stream16To19).Funded)
	assert.Equal(t, "2025-07-31", q.LastNewStart.String())
}

func TestValidateQualification_EmptyIsValid(t *testing.T) {
	got := funding.ValidateQualification(funding.RawQualification{})
	assert.True(t, got.IsValid)
	assert.NotNil(t, got.Sanitized)
}

func TestValidateQualification_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   funding.RawQualification
		field string
		msg   string
	}{
		{"short reference", funding.RawQualification{LearningAimRef: "123"}, "learningAimRef", "Learning Aim Reference must be 8 alphanumeric characters"},
		{"short title", funding.RawQualification{LearningAimTitle: "abc"}, "learningAimTitle", "Course title must be at least 5 characters"},
		{"long title", funding.RawQualification{LearningAimTitle: strings.Repeat("x", 201)}, "learningAimTitle", "Course title must be less than 200 characters"},
		{"bad level", funding.RawQualification{QualificationLevel: "7"}, "qualificationLevel", "Invalid qualification level"},
		{"hours too high", funding.RawQualification{GuidedLearningHours: funding.RawInt(2001)}, "guidedLearningHours", "Guided Learning Hours must be between 0 and 2000"},
		{"hours garbage", funding.RawQualification{GuidedLearningHours: funding.Raw("many")}, "guidedLearningHours", "Guided Learning Hours must be between 0 and 2000"},
		{"tqt negative", funding.RawQualification{TotalQualificationTime: funding.RawInt(-1)}, "totalQualificationTime", "Total Qualification Time must be between 0 and 5000"},
		{"bad date", funding.RawQualification{LastNewStartDate: "31/07/2025"}, "lastNewStartDate", "Last new start date must be a date in YYYY-MM-DD format"},
		{"window reversed", funding.RawQualification{LastNewStartDate: "2026-01-01", CertificationEndDate: "2025-01-01"}, "certificationEndDate", "Certification end date must not be before the last new start date"},
		{"unknown stream", funding.RawQualification{FundingStreams: map[string]funding.StreamFunding{"bursary": {}}}, "fundingStreams", "Unknown funding stream: bursary"},
		{"negative rate", funding.RawQualification{FundingStreams: map[string]funding.StreamFunding{"adult": {Rate: generic.NewMoney(-1)}}}, "fundingStreams", "Funding rate for adult cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := funding.ValidateQualification(tt.raw)
			assert.False(t, got.IsValid)
			assert.Nil(t, got.Sanitized)
			require.Len(t, got.Errors, 1)
			assert.Equal(t, tt.field, got.Errors[0].Field)
			assert.Equal(t, tt.msg, got.Errors[0].Message)
		})
	}
}

// =============================================================================
// RAW INPUT TESTS
// =============================================================================

func TestRawField_UnmarshalJSON(t *testing.T) {
	var in struct {
		A funding.RawField `json:"a"`
		B funding.RawField `json:"b"`
		C funding.RawField `json:"c"`
		D funding.RawField `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 17, "b": "17", "c": null}`), &in))

	assert.Equal(t, generic.NewMeasure(17), in.A.Measure())
	assert.Equal(t, generic.NewMeasure(17), in.B.Measure())
	assert.False(t, in.C.IsSet())
	assert.False(t, in.D.IsSet())

	assert.Error(t, json.Unmarshal([]byte(`{"a": [1]}`), &in))

	// Number tokens are read by value; strings keep leading-integer parsing.
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1e2, "b": "1e2", "c": 17.9, "d": -0.5}`), &in))
	assert.Equal(t, generic.NewMeasure(100), in.A.Measure())
	assert.Equal(t, generic.NewMeasure(1), in.B.Measure())
	assert.Equal(t, generic.NewMeasure(17), in.C.Measure())
	assert.Equal(t, generic.NewMeasure(0), in.D.Measure())
}

func TestValidateLearner_ExponentAgeFromJSON(t *testing.T) {
	var raw funding.RawLearner
	require.NoError(t, json.Unmarshal([]byte(`{"age": 1e2, "employmentStatus": "employed", "qualificationLevel": "2"}`), &raw))

	got := funding.ValidateLearner(raw)
	require.True(t, got.IsValid, "errors: %v", got.Errors)
	assert.Equal(t, generic.NewMeasure(100), got.Sanitized.Age)
}
