/*
validation.go - Input validation and sanitization

PURPOSE:
  Turns untrusted form input into a LearnerProfile or QualificationProfile.
  Problems are returned as field-level data, never as errors or panics, and
  they block evaluation until resolved.

SINGLE-FIELD VALIDATORS:
  Each field can be checked on its own (Age, EmploymentStatus, ...). They
  return a FieldResult with the sanitized value when valid.

WHOLE-RECORD VALIDATION:
  Learner:        age, employmentStatus and qualificationLevel are required;
                  takeHomePay is optional (empty -> 0); benefits optional.
                  Errors are reported in that field order.
  Qualification:  every field is optional, but a present field must be
                  well formed. Struct tags (go-playground/validator) carry
                  the ranges; messages are mapped per field.

  Sanitized is non-nil only when Errors is empty.

SEE ALSO:
  - raw.go: RawLearner / RawQualification
  - completeness.go: Display formatting of these errors
*/
package funding

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/warp/funding-engine/generic"
)

// FieldResult is the outcome of a single-field validator.
type FieldResult[T any] struct {
	IsValid   bool   `json:"isValid"`
	Error     string `json:"error,omitempty"`
	Sanitized T      `json:"sanitized"`
}

func valid[T any](v T) FieldResult[T] { return FieldResult[T]{IsValid: true, Sanitized: v} }

func invalid[T any](msg string) FieldResult[T] { return FieldResult[T]{Error: msg} }

// LearnerValidation is the outcome of validating a whole learner record.
type LearnerValidation struct {
	IsValid   bool                     `json:"isValid"`
	Sanitized *LearnerProfile          `json:"sanitizedData"`
	Errors    generic.ValidationErrors `json:"errors"`
}

// QualificationValidation is the outcome of validating a qualification record.
type QualificationValidation struct {
	IsValid   bool                     `json:"isValid"`
	Sanitized *QualificationProfile    `json:"sanitizedData"`
	Errors    generic.ValidationErrors `json:"errors"`
}

// Err returns the errors as an error value, or nil when valid.
func (v LearnerValidation) Err() error {
	if v.IsValid {
		return nil
	}
	return v.Errors
}

// Err returns the errors as an error value, or nil when valid.
func (v QualificationValidation) Err() error {
	if v.IsValid {
		return nil
	}
	return v.Errors
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks input against a Thresholds configuration.
type Validator struct {
	th Thresholds
}

// NewValidator validates th and returns a Validator bound to it.
func NewValidator(th Thresholds) (*Validator, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Validator{th: th.Freeze()}, nil
}

var defaultValidator = &Validator{th: DefaultThresholds()}

// Age requires a leading integer within the valid age range.
func (v *Validator) Age(raw RawField) FieldResult[int] {
	if raw.IsEmpty() {
		return invalid[int]("Age is required")
	}
	age, ok := raw.Measure().Int()
	if !ok {
		return invalid[int]("Age must be a valid number")
	}
	if age < v.th.MinValidAge || age > v.th.MaxValidAge {
		return invalid[int](fmt.Sprintf("Age must be between %d and %d", v.th.MinValidAge, v.th.MaxValidAge))
	}
	return valid(age)
}

func (v *Validator) EmploymentStatus(s string) FieldResult[EmploymentStatus] {
	if s == "" {
		return invalid[EmploymentStatus]("Employment status is required")
	}
	status := EmploymentStatus(s)
	if !status.Valid() {
		return invalid[EmploymentStatus]("Invalid employment status")
	}
	return valid(status)
}

func (v *Validator) QualificationLevel(s string) FieldResult[QualificationLevel] {
	if s == "" {
		return invalid[QualificationLevel]("Qualification level is required")
	}
	level := QualificationLevel(s)
	if !level.Valid() {
		return invalid[QualificationLevel]("Invalid qualification level")
	}
	return valid(level)
}

// MonthlyIncome is optional: an empty value is valid and sanitizes to zero.
func (v *Validator) MonthlyIncome(raw RawField) FieldResult[generic.Money] {
	if raw.IsEmpty() {
		return valid(generic.ZeroMoney())
	}
	n, ok := raw.Measure().Int()
	if !ok {
		return invalid[generic.Money]("Income must be a valid number")
	}
	income := generic.NewMoney(int64(n))
	if income.IsNegative() {
		return invalid[generic.Money]("Income cannot be negative")
	}
	if income.GreaterThan(v.th.MaxMonthlyIncome) {
		return invalid[generic.Money]("Income seems unusually high - please check")
	}
	return valid(income)
}

// Benefits rejects unknown codes and de-duplicates the rest.
func (v *Validator) Benefits(codes []string) FieldResult[BenefitSet] {
	var unknown []string
	benefits := make([]Benefit, 0, len(codes))
	for _, c := range codes {
		b := Benefit(c)
		if !b.Valid() {
			unknown = append(unknown, c)
			continue
		}
		benefits = append(benefits, b)
	}
	if len(unknown) > 0 {
		return FieldResult[BenefitSet]{
			Error:     "Invalid benefit codes: " + strings.Join(unknown, ", "),
			Sanitized: BenefitSet{},
		}
	}
	return valid(NewBenefitSet(benefits...))
}

// LearningAimReference trims and uppercases before checking the format.
func (v *Validator) LearningAimReference(s string) FieldResult[string] {
	if s == "" {
		return invalid[string]("Learning Aim Reference is required")
	}
	ref := strings.ToUpper(strings.TrimSpace(s))
	if err := getValidator().Var(ref, "len=8,alphanum"); err != nil {
		return invalid[string]("Learning Aim Reference must be 8 alphanumeric characters")
	}
	return valid(ref)
}

func (v *Validator) CourseTitle(s string) FieldResult[string] {
	if s == "" {
		return invalid[string]("Course title is required")
	}
	title := strings.TrimSpace(s)
	if err := getValidator().Var(title, "min=5,max=200"); err != nil {
		return invalid[string](titleMessage(firstTag(err)))
	}
	return valid(title)
}

// =============================================================================
// LEARNER
// =============================================================================

// Learner validates a whole learner record.
func (v *Validator) Learner(raw RawLearner) LearnerValidation {
	errs := generic.ValidationErrors{}
	add := func(field, msg string) {
		errs = append(errs, generic.FieldError{Field: field, Message: msg})
	}

	age := v.Age(raw.Age)
	if !age.IsValid {
		add("age", age.Error)
	}
	status := v.EmploymentStatus(raw.EmploymentStatus)
	if !status.IsValid {
		add("employmentStatus", status.Error)
	}
	level := v.QualificationLevel(raw.QualificationLevel)
	if !level.IsValid {
		add("qualificationLevel", level.Error)
	}
	income := v.MonthlyIncome(raw.TakeHomePay)
	if !income.IsValid {
		add("takeHomePay", income.Error)
	}
	benefits := v.Benefits(raw.Benefits)
	if !benefits.IsValid {
		add("benefits", benefits.Error)
	}

	if len(errs) > 0 {
		return LearnerValidation{Errors: errs}
	}
	return LearnerValidation{
		IsValid: true,
		Errors:  errs,
		Sanitized: &LearnerProfile{
			Age:                 generic.NewMeasure(age.Sanitized),
			EmploymentStatus:    status.Sanitized,
			Benefits:            benefits.Sanitized,
			TakeHomePay:         income.Sanitized,
			PartnerBenefitClaim: raw.PartnerBenefitClaim,
			QualificationLevel:  level.Sanitized,
			Nationality:         strings.TrimSpace(raw.Nationality),
			VisaType:            strings.TrimSpace(raw.VisaType),
			Postcode:            strings.TrimSpace(raw.Postcode),
		},
	}
}

// =============================================================================
// QUALIFICATION
// =============================================================================

// qualificationInput carries the tag-checked fields after trimming.
// Unparseable hour values are stored as -1 so they fail their range.
type qualificationInput struct {
	LearningAimRef         string `json:"learningAimRef" validate:"omitempty,len=8,alphanum"`
	LearningAimTitle       string `json:"learningAimTitle" validate:"omitempty,min=5,max=200"`
	QualificationLevel     string `json:"qualificationLevel" validate:"omitempty,oneof=none 1 2 3 4+"`
	GuidedLearningHours    *int   `json:"guidedLearningHours" validate:"omitempty,min=0,max=2000"`
	TotalQualificationTime *int   `json:"totalQualificationTime" validate:"omitempty,min=0,max=5000"`
	LastNewStartDate       string `json:"lastNewStartDate" validate:"omitempty,datetime=2006-01-02"`
	CertificationEndDate   string `json:"certificationEndDate" validate:"omitempty,datetime=2006-01-02"`
}

var qualificationMessages = map[string]string{
	"learningAimRef":         "Learning Aim Reference must be 8 alphanumeric characters",
	"qualificationLevel":     "Invalid qualification level",
	"guidedLearningHours":    "Guided Learning Hours must be between 0 and 2000",
	"totalQualificationTime": "Total Qualification Time must be between 0 and 5000",
	"lastNewStartDate":       "Last new start date must be a date in YYYY-MM-DD format",
	"certificationEndDate":   "Certification end date must be a date in YYYY-MM-DD format",
}

// Qualification validates a course record. All fields are optional.
func (v *Validator) Qualification(raw RawQualification) QualificationValidation {
	in := qualificationInput{
		LearningAimRef:         strings.ToUpper(strings.TrimSpace(raw.LearningAimRef)),
		LearningAimTitle:       strings.TrimSpace(raw.LearningAimTitle),
		QualificationLevel:     strings.TrimSpace(raw.QualificationLevel),
		GuidedLearningHours:    hoursPtr(raw.GuidedLearningHours),
		TotalQualificationTime: hoursPtr(raw.TotalQualificationTime),
		LastNewStartDate:       strings.TrimSpace(raw.LastNewStartDate),
		CertificationEndDate:   strings.TrimSpace(raw.CertificationEndDate),
	}

	errs := generic.ValidationErrors{}
	if err := getValidator().Struct(in); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			errs = append(errs, generic.FieldError{Field: "qualification", Message: err.Error()})
		}
		for _, fe := range ve {
			msg := qualificationMessages[fe.Field()]
			if fe.Field() == "learningAimTitle" {
				msg = titleMessage(fe.Tag())
			}
			errs = append(errs, generic.FieldError{Field: fe.Field(), Message: msg})
		}
	}

	streams, streamErrs := v.fundingStreams(raw.FundingStreams)
	errs = append(errs, streamErrs...)

	var window generic.Window
	if len(errs) == 0 {
		window.LastNewStart, _ = generic.ParseDate(in.LastNewStartDate)
		window.CertificationEnd, _ = generic.ParseDate(in.CertificationEndDate)
		if err := window.Validate(); err != nil {
			errs = append(errs, generic.FieldError{
				Field:   "certificationEndDate",
				Message: "Certification end date must not be before the last new start date",
			})
		}
	}

	if len(errs) > 0 {
		return QualificationValidation{Errors: errs}
	}
	q := &QualificationProfile{
		LearningAimRef:           in.LearningAimRef,
		LearningAimTitle:         in.LearningAimTitle,
		Level:                    QualificationLevel(in.QualificationLevel),
		FundingStreams:           streams,
		Compatible16To19:         raw.Compatible16To19,
		CompatibleASF:            raw.CompatibleASF,
		CompatibleApprenticeship: raw.CompatibleApprenticeship,
		Window:                   window,
	}
	if in.GuidedLearningHours != nil {
		q.GuidedLearningHours = *in.GuidedLearningHours
	}
	if in.TotalQualificationTime != nil {
		q.TotalQualificationTime = *in.TotalQualificationTime
	}
	return QualificationValidation{IsValid: true, Sanitized: q, Errors: errs}
}

func (v *Validator) fundingStreams(raw map[string]StreamFunding) (map[generic.StreamID]StreamFunding, generic.ValidationErrors) {
	if len(raw) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs generic.ValidationErrors
	out := make(map[generic.StreamID]StreamFunding, len(raw))
	for _, k := range keys {
		id, err := generic.ParseStreamID(k)
		if err != nil {
			errs = append(errs, generic.FieldError{Field: "fundingStreams", Message: "Unknown funding stream: " + k})
			continue
		}
		f := raw[k]
		if f.Rate.IsNegative() {
			errs = append(errs, generic.FieldError{Field: "fundingStreams", Message: "Funding rate for " + k + " cannot be negative"})
			continue
		}
		out[id] = f
	}
	return out, errs
}

func hoursPtr(raw RawField) *int {
	if !raw.IsSet() {
		return nil
	}
	n, ok := raw.Measure().Int()
	if !ok {
		n = -1
	}
	return &n
}

func titleMessage(tag string) string {
	if tag == "max" {
		return "Course title must be less than 200 characters"
	}
	return "Course title must be at least 5 characters"
}

func firstTag(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].Tag()
	}
	return ""
}

// =============================================================================
// PACKAGE-LEVEL VALIDATORS - Default thresholds
// =============================================================================

func ValidateAge(raw RawField) FieldResult[int] { return defaultValidator.Age(raw) }

func ValidateEmploymentStatus(s string) FieldResult[EmploymentStatus] {
	return defaultValidator.EmploymentStatus(s)
}

func ValidateQualificationLevel(s string) FieldResult[QualificationLevel] {
	return defaultValidator.QualificationLevel(s)
}

func ValidateMonthlyIncome(raw RawField) FieldResult[generic.Money] {
	return defaultValidator.MonthlyIncome(raw)
}

func ValidateBenefits(codes []string) FieldResult[BenefitSet] {
	return defaultValidator.Benefits(codes)
}

func ValidateLearningAimReference(s string) FieldResult[string] {
	return defaultValidator.LearningAimReference(s)
}

func ValidateCourseTitle(s string) FieldResult[string] { return defaultValidator.CourseTitle(s) }

// ValidateLearner validates with the default thresholds.
func ValidateLearner(raw RawLearner) LearnerValidation { return defaultValidator.Learner(raw) }

// ValidateQualification validates with the default thresholds.
func ValidateQualification(raw RawQualification) QualificationValidation {
	return defaultValidator.Qualification(raw)
}
