/*
thresholds.go - Eligibility and validation constants

PURPOSE:
  Holds every number and code list the rules and the validator compare
  against. A Thresholds value is built once at startup (from defaults or
  a config file via the factory package) and injected into the Assessor
  and Validator. Rules never read package-level constants.

DEFAULTS:
  Age bands:        16-18 young person, 19+ adult, 16+ apprenticeship
  Universal Credit: take-home pay under £345 (single) or £552 (joint)
  Validation:       age 14-100, monthly income up to £50,000
  Benefits:         jsa, esa, universal-credit qualify for Free Courses for Jobs;
                    universal-credit is the income-tested one
  Loan levels:      3 and 4+

IMMUTABILITY:
  Slices are copied on the way in (Freeze) and on the way out, so a caller
  holding a Thresholds cannot change what a running Assessor sees.

SEE ALSO:
  - rules.go: Consumes these thresholds
  - factory/thresholds.go: JSON/YAML configuration
*/
package funding

import (
	"fmt"

	"github.com/warp/funding-engine/generic"
)

// Thresholds is the immutable configuration of the rule table.
type Thresholds struct {
	YoungPersonMinAge    int
	YoungPersonMaxAge    int
	AdultMinAge          int
	YoungAdultMaxAge     int
	ApprenticeshipMinAge int

	UniversalCreditSingle generic.Money
	UniversalCreditJoint  generic.Money

	MinValidAge      int
	MaxValidAge      int
	MaxMonthlyIncome generic.Money

	QualifyingBenefits  []Benefit
	IncomeTestedBenefit Benefit
	HigherLevels        []QualificationLevel
}

// DefaultThresholds returns the published funding rules.
func DefaultThresholds() Thresholds {
	return Thresholds{
		YoungPersonMinAge:    16,
		YoungPersonMaxAge:    18,
		AdultMinAge:          19,
		YoungAdultMaxAge:     24,
		ApprenticeshipMinAge: 16,

		UniversalCreditSingle: generic.NewMoney(345),
		UniversalCreditJoint:  generic.NewMoney(552),

		MinValidAge:      14,
		MaxValidAge:      100,
		MaxMonthlyIncome: generic.NewMoney(50000),

		QualifyingBenefits:  []Benefit{BenefitJSA, BenefitESA, BenefitUniversalCredit},
		IncomeTestedBenefit: BenefitUniversalCredit,
		HigherLevels:        []QualificationLevel{Level3, Level4Plus},
	}
}

// Validate checks the thresholds are internally consistent.
func (t Thresholds) Validate() error {
	switch {
	case t.YoungPersonMinAge > t.YoungPersonMaxAge:
		return fmt.Errorf("%w: young person age band %d-%d is empty", generic.ErrInvalidConfig, t.YoungPersonMinAge, t.YoungPersonMaxAge)
	case t.AdultMinAge <= t.YoungPersonMaxAge:
		return fmt.Errorf("%w: adult minimum age %d overlaps young person band", generic.ErrInvalidConfig, t.AdultMinAge)
	case t.YoungAdultMaxAge < t.AdultMinAge:
		return fmt.Errorf("%w: young adult maximum age %d below adult minimum", generic.ErrInvalidConfig, t.YoungAdultMaxAge)
	case t.MinValidAge > t.MaxValidAge:
		return fmt.Errorf("%w: valid age range %d-%d is empty", generic.ErrInvalidConfig, t.MinValidAge, t.MaxValidAge)
	case t.UniversalCreditSingle.IsNegative() || t.UniversalCreditJoint.IsNegative():
		return fmt.Errorf("%w: income thresholds must not be negative", generic.ErrInvalidConfig)
	case t.MaxMonthlyIncome.IsNegative():
		return fmt.Errorf("%w: maximum monthly income must not be negative", generic.ErrInvalidConfig)
	case len(t.QualifyingBenefits) == 0:
		return fmt.Errorf("%w: no qualifying benefits", generic.ErrInvalidConfig)
	case len(t.HigherLevels) == 0:
		return fmt.Errorf("%w: no loan qualification levels", generic.ErrInvalidConfig)
	}
	for _, b := range t.QualifyingBenefits {
		if !b.Valid() {
			return fmt.Errorf("%w: unknown benefit %q", generic.ErrInvalidConfig, b)
		}
	}
	if t.IncomeTestedBenefit != "" && !t.IncomeTestedBenefit.Valid() {
		return fmt.Errorf("%w: unknown benefit %q", generic.ErrInvalidConfig, t.IncomeTestedBenefit)
	}
	for _, l := range t.HigherLevels {
		if !l.Valid() {
			return fmt.Errorf("%w: unknown qualification level %q", generic.ErrInvalidConfig, l)
		}
	}
	return nil
}

// Freeze returns a deep copy safe to hold for the process lifetime.
func (t Thresholds) Freeze() Thresholds {
	out := t
	out.QualifyingBenefits = append([]Benefit(nil), t.QualifyingBenefits...)
	out.HigherLevels = append([]QualificationLevel(nil), t.HigherLevels...)
	return out
}

// IncomeThreshold returns the Universal Credit threshold for the claim type.
func (t Thresholds) IncomeThreshold(jointClaim bool) generic.Money {
	if jointClaim {
		return t.UniversalCreditJoint
	}
	return t.UniversalCreditSingle
}

// IsHigherLevel reports whether l qualifies for the Advanced Learner Loan.
func (t Thresholds) IsHigherLevel(l QualificationLevel) bool {
	for _, v := range t.HigherLevels {
		if v == l {
			return true
		}
	}
	return false
}

// FlatRateBenefits are qualifying benefits that are not income tested.
func (t Thresholds) FlatRateBenefits() []Benefit {
	out := []Benefit{}
	for _, b := range t.QualifyingBenefits {
		if b != t.IncomeTestedBenefit {
			out = append(out, b)
		}
	}
	return out
}
