package funding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// RAW INPUT - Untrusted form data
// =============================================================================

// RawField is a form value that may arrive as a JSON string, number, bool or
// null. It keeps the text exactly as sent so validators can report on it.
type RawField struct {
	text string
	set  bool
}

// Raw wraps a form value.
func Raw(s string) RawField { return RawField{text: s, set: true} }

// RawInt wraps a numeric form value.
func RawInt(n int) RawField { return Raw(fmt.Sprint(n)) }

// IsEmpty reports a missing, null or blank value.
func (f RawField) IsEmpty() bool { return !f.set || strings.TrimSpace(f.text) == "" }

// IsSet reports whether the field was present at all (null counts as absent).
func (f RawField) IsSet() bool { return f.set }

func (f RawField) String() string { return f.text }

// Measure parses the value as a leading integer.
func (f RawField) Measure() generic.Measure {
	if !f.set {
		return generic.UnknownMeasure()
	}
	return generic.ParseMeasure(f.text)
}

func (f RawField) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return json.Marshal(f.text)
}

func (f *RawField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = RawField{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Raw(s)
	case len(b) > 0 && (b[0] == '{' || b[0] == '['):
		return fmt.Errorf("expected a string or number, got %s", b)
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		// Number tokens are read by value, so 1e2 is 100 and 17.9 is 17.
		n, err := json.Number(b).Float64()
		if err != nil {
			return fmt.Errorf("invalid number %s: %w", b, err)
		}
		*f = Raw(strconv.FormatFloat(math.Trunc(n), 'f', -1, 64))
	default:
		*f = Raw(string(b))
	}
	return nil
}

// RawLearner is learner data as submitted by a form.
type RawLearner struct {
	Age                 RawField `json:"age"`
	EmploymentStatus    string   `json:"employmentStatus"`
	Benefits            []string `json:"benefits"`
	TakeHomePay         RawField `json:"takeHomePay"`
	PartnerBenefitClaim bool     `json:"partnerBenefitClaim"`
	QualificationLevel  string   `json:"qualificationLevel"`
	Nationality         string   `json:"nationality"`
	VisaType            string   `json:"visaType"`
	Postcode            string   `json:"postcode"`
}

// RawQualification is course data as submitted by a form or import.
type RawQualification struct {
	LearningAimRef           string                   `json:"learningAimRef"`
	LearningAimTitle         string                   `json:"learningAimTitle"`
	QualificationLevel       string                   `json:"qualificationLevel"`
	FundingStreams           map[string]StreamFunding `json:"fundingStreams"`
	Compatible16To19         bool                     `json:"compatible16to19"`
	CompatibleASF            bool                     `json:"compatibleASF"`
	CompatibleApprenticeship bool                     `json:"compatibleApprenticeship"`
	GuidedLearningHours      RawField                 `json:"guidedLearningHours"`
	TotalQualificationTime   RawField                 `json:"totalQualificationTime"`
	LastNewStartDate         string                   `json:"lastNewStartDate"`
	CertificationEndDate     string                   `json:"certificationEndDate"`
}

// LearnerFromRaw converts without validating. Garbage age becomes unknown,
// garbage or missing pay becomes zero, and unknown enum values pass through
// so the rules see exactly what was sent.
func LearnerFromRaw(raw RawLearner) LearnerProfile {
	benefits := make([]Benefit, len(raw.Benefits))
	for i, b := range raw.Benefits {
		benefits[i] = Benefit(b)
	}
	return LearnerProfile{
		Age:                 raw.Age.Measure(),
		EmploymentStatus:    EmploymentStatus(raw.EmploymentStatus),
		Benefits:            NewBenefitSet(benefits...),
		TakeHomePay:         payOrZero(raw.TakeHomePay),
		PartnerBenefitClaim: raw.PartnerBenefitClaim,
		QualificationLevel:  QualificationLevel(raw.QualificationLevel),
		Nationality:         strings.TrimSpace(raw.Nationality),
		VisaType:            strings.TrimSpace(raw.VisaType),
		Postcode:            strings.TrimSpace(raw.Postcode),
	}
}

func payOrZero(f RawField) generic.Money {
	n, ok := f.Measure().Int()
	if !ok {
		return generic.ZeroMoney()
	}
	return generic.NewMoney(int64(n))
}
