package factory_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/funding-engine/courses"
	"github.com/warp/funding-engine/factory"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

func newThresholdsFactory(t *testing.T) *factory.ThresholdsFactory {
	t.Helper()
	f, err := factory.NewThresholdsFactory()
	require.NoError(t, err)
	return f
}

// =============================================================================
// THRESHOLDS TESTS
// =============================================================================

func TestThresholds_EmptyDocumentKeepsDefaults(t *testing.T) {
	f := newThresholdsFactory(t)

	th, err := f.Parse([]byte(`{}`), factory.FormatJSON)

	require.NoError(t, err)
	want, _ := json.Marshal(f.ToJSON(funding.DefaultThresholds()))
	got, _ := json.Marshal(f.ToJSON(th))
	assert.JSONEq(t, string(want), string(got))
}

func TestThresholds_PartialOverride(t *testing.T) {
	// GIVEN: A document that only raises the single-claim income threshold
	// WHEN: Parsed
	// THEN: That value changes and everything else keeps its default

	f := newThresholdsFactory(t)

	th, err := f.Parse([]byte(`{"universal_credit": {"single": 400.50}}`), factory.FormatJSON)

	require.NoError(t, err)
	assert.True(t, th.UniversalCreditSingle.Equal(generic.MustParseMoney("400.50")))
	assert.True(t, th.UniversalCreditJoint.Equal(generic.NewMoney(552)))
	assert.Equal(t, 19, th.AdultMinAge)
}

func TestThresholds_YAML(t *testing.T) {
	f := newThresholdsFactory(t)
	doc := `
age_bands:
  apprenticeship_min: 17
qualifying_benefits: [jsa, universal-credit]
higher_levels: ["4+"]
`
	th, err := f.Parse([]byte(doc), factory.FormatYAML)

	require.NoError(t, err)
	assert.Equal(t, 17, th.ApprenticeshipMinAge)
	assert.Equal(t, []funding.Benefit{funding.BenefitJSA, funding.BenefitUniversalCredit}, th.QualifyingBenefits)
	assert.Equal(t, []funding.QualificationLevel{funding.Level4Plus}, th.HigherLevels)
}

func TestThresholds_SchemaViolations(t *testing.T) {
	f := newThresholdsFactory(t)

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", `{"colour": "blue"}`},
		{"negative amount", `{"universal_credit": {"single": -1}}`},
		{"fractional age", `{"age_bands": {"adult_min": 18.5}}`},
		{"unknown benefit", `{"qualifying_benefits": ["dla"]}`},
		{"empty level list", `{"higher_levels": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Parse([]byte(tt.doc), factory.FormatJSON)
			assert.ErrorIs(t, err, generic.ErrInvalidConfig)
		})
	}
}

func TestThresholds_InconsistentBandsRejected(t *testing.T) {
	f := newThresholdsFactory(t)

	_, err := f.Parse([]byte(`{"age_bands": {"young_person_max": 20}}`), factory.FormatJSON)

	assert.ErrorIs(t, err, generic.ErrInvalidConfig)
}

func TestLoadThresholdsFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "thresholds.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("universal_credit:\n  joint: 600\n"), 0o600))

	th, err := factory.LoadThresholdsFile(yamlPath)
	require.NoError(t, err)
	assert.True(t, th.UniversalCreditJoint.Equal(generic.NewMoney(600)))

	_, err = factory.LoadThresholdsFile(filepath.Join(dir, "thresholds.toml"))
	assert.ErrorIs(t, err, factory.ErrUnsupportedFormat)
}

// =============================================================================
// COURSE IMPORT TESTS
// =============================================================================

const coursesJSON = `[
  {
    "learningAimRef": "60003456",
    "learningAimTitle": "BTEC Level 3 National Diploma in Information Technology",
    "qualificationLevel": "3",
    "awardOrgCode": " pearson ",
    "status": "Active",
    "sector": "Digital",
    "fundingStreams": {
      "16-19": {"funded": true, "rate": 2840},
      "apprenticeship": {"funded": false, "rate": 0}
    },
    "compatible16to19": true,
    "guidedLearningHours": 720,
    "totalQualificationTime": "1080",
    "lastNewStartDate": "2025-07-31",
    "certificationEndDate": "2026-12-31"
  }
]`

func newCourseFactory(t *testing.T) *factory.CourseFactory {
	t.Helper()
	v, err := funding.NewValidator(funding.DefaultThresholds())
	require.NoError(t, err)
	return factory.NewCourseFactory(v)
}

func TestCourses_Parse(t *testing.T) {
	got, err := newCourseFactory(t).Parse([]byte(coursesJSON), factory.FormatJSON)

	require.NoError(t, err)
	require.Len(t, got, 1)
	c := got[0]
	assert.Equal(t, "60003456", c.LearningAimRef)
	assert.Equal(t, "PEARSON", c.AwardOrgCode)
	assert.Equal(t, 1080, c.TotalQualificationTime)
	assert.True(t, c.Funding(funding.Stream16To19).Funded)
	assert.True(t, c.Compatible16To19)
	assert.True(t, c.IsActive())
}

func TestCourses_UnknownStreamRejected(t *testing.T) {
	doc := `[{"learningAimRef": "60003456", "learningAimTitle": "Some course title",
	          "fundingStreams": {"bursary": {"funded": true, "rate": 1}}}]`

	_, err := newCourseFactory(t).Parse([]byte(doc), factory.FormatJSON)

	var importErr *factory.CourseImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 0, importErr.Index)
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestCourses_RefAndTitleRequired(t *testing.T) {
	_, err := newCourseFactory(t).Parse([]byte(`[{"learningAimTitle": "Some course title"}]`), factory.FormatJSON)
	assert.ErrorIs(t, err, generic.ErrValidation)

	_, err = newCourseFactory(t).Parse([]byte(`[{"learningAimRef": "60003456"}]`), factory.FormatJSON)
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestCourses_YAMLImport(t *testing.T) {
	doc := `
- learningAimRef: "50117729"
  learningAimTitle: Level 2 Certificate in Principles of Customer Service
  qualificationLevel: "2"
  guidedLearningHours: 155
`
	got, err := newCourseFactory(t).Parse([]byte(doc), factory.FormatYAML)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 155, got[0].GuidedLearningHours)
}

func TestCourses_RoundTripSamples(t *testing.T) {
	f := newCourseFactory(t)

	for _, c := range courses.SampleCourses() {
		back, err := f.FromJSON(f.ToJSON(c))
		require.NoError(t, err)
		assert.Equal(t, c.LearningAimRef, back.LearningAimRef)
		assert.Equal(t, c.LastNewStart.String(), back.LastNewStart.String())
		assert.Equal(t, c.CertificationEnd.String(), back.CertificationEnd.String())
		assert.Equal(t, c.GuidedLearningHours, back.GuidedLearningHours)
		for id, sf := range c.FundingStreams {
			assert.Equal(t, sf.Funded, back.Funding(id).Funded, id)
			assert.True(t, sf.Rate.Equal(back.Funding(id).Rate), id)
		}
	}
}
