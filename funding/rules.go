/*
rules.go - The funding stream rule table

PURPOSE:
  One rule per funding stream, each a pure predicate over a Subject. The
  table is built from a Thresholds value so no rule reads a package-level
  constant.

RULES:
  16-19:                 age in [YoungPersonMinAge, YoungPersonMaxAge]
  adult:                 age >= AdultMinAge
  freeCoursesForJobs:    age >= AdultMinAge and a qualifying benefit;
                         Universal Credit also needs pay < income threshold
  advancedLearnerLoan:   age >= AdultMinAge and relevant level is higher level
  apprenticeship:        age >= ApprenticeshipMinAge

  Residency and course compatibility never gate a verdict.

REASONS:
  Every reason names the threshold compared and the learner's actual value,
  e.g. "Not eligible - must be 19 or over (currently 17)". An unknown age
  fails every stream with the same reason.

PRIORITY (primary recommendation):
  16-19, freeCoursesForJobs, adult, advancedLearnerLoan, apprenticeship

SEE ALSO:
  - thresholds.go: The numbers compared here
  - generic/rule.go: Table evaluation and summary
*/
package funding

import (
	"fmt"
	"strings"

	"github.com/warp/funding-engine/generic"
)

const reasonUnknownAge = "Not eligible - age could not be determined"

func newRuleTable(th Thresholds) *generic.RuleTable[Subject] {
	return generic.MustRuleTable(
		generic.Rule[Subject]{ID: Stream16To19, Title: streamTitle(Stream16To19), Priority: 1, Check: youngPersonRule(th)},
		generic.Rule[Subject]{ID: StreamAdult, Title: streamTitle(StreamAdult), Priority: 3, Check: adultRule(th)},
		generic.Rule[Subject]{ID: StreamFreeCoursesForJobs, Title: streamTitle(StreamFreeCoursesForJobs), Priority: 2, Check: freeCoursesRule(th)},
		generic.Rule[Subject]{ID: StreamAdvancedLearnerLoan, Title: streamTitle(StreamAdvancedLearnerLoan), Priority: 4, Check: loanRule(th)},
		generic.Rule[Subject]{ID: StreamApprenticeship, Title: streamTitle(StreamApprenticeship), Priority: 5, Check: apprenticeshipRule(th)},
	)
}

func streamTitle(id generic.StreamID) string {
	if d, ok := generic.LookupStream(id); ok {
		return d.Title
	}
	return string(id)
}

// =============================================================================
// AGE RULES
// =============================================================================

func youngPersonRule(th Thresholds) generic.Predicate[Subject] {
	return func(s Subject) generic.Verdict {
		age := s.Learner.Age
		if !age.Known() {
			return generic.Ineligible(reasonUnknownAge)
		}
		if age.Between(th.YoungPersonMinAge, th.YoungPersonMaxAge) {
			return generic.Eligible(fmt.Sprintf("Eligible due to age (%s - within %d-%d range)",
				age, th.YoungPersonMinAge, th.YoungPersonMaxAge))
		}
		return generic.Ineligible(fmt.Sprintf("Not eligible - must be aged %d-%d (currently %s)",
			th.YoungPersonMinAge, th.YoungPersonMaxAge, age))
	}
}

func adultRule(th Thresholds) generic.Predicate[Subject] {
	return func(s Subject) generic.Verdict {
		age := s.Learner.Age
		if !age.Known() {
			return generic.Ineligible(reasonUnknownAge)
		}
		if age.AtLeast(th.AdultMinAge) {
			return generic.Eligible(fmt.Sprintf("Eligible due to age (%s - %d or over)", age, th.AdultMinAge))
		}
		return tooYoung(th.AdultMinAge, age)
	}
}

func apprenticeshipRule(th Thresholds) generic.Predicate[Subject] {
	return func(s Subject) generic.Verdict {
		age := s.Learner.Age
		if !age.Known() {
			return generic.Ineligible(reasonUnknownAge)
		}
		if !age.AtLeast(th.ApprenticeshipMinAge) {
			return tooYoung(th.ApprenticeshipMinAge, age)
		}
		if s.Learner.EmploymentStatus == Unemployed {
			return generic.Eligible(fmt.Sprintf("Eligible - age %s, seeking employment through apprenticeship", age))
		}
		return generic.Eligible(fmt.Sprintf("Eligible - age %s, can undertake apprenticeship training", age))
	}
}

func tooYoung(min int, age generic.Measure) generic.Verdict {
	return generic.Ineligible(fmt.Sprintf("Not eligible - must be %d or over (currently %s)", min, age))
}

// =============================================================================
// FREE COURSES FOR JOBS
// =============================================================================

func freeCoursesRule(th Thresholds) generic.Predicate[Subject] {
	return func(s Subject) generic.Verdict {
		l := s.Learner
		if !l.Age.Known() {
			return generic.Ineligible(reasonUnknownAge)
		}
		if !l.Age.AtLeast(th.AdultMinAge) {
			return tooYoung(th.AdultMinAge, l.Age)
		}

		held := l.Benefits.Intersect(th.QualifyingBenefits...)
		if len(held) == 0 {
			return generic.Ineligible("Not eligible - must be receiving " + benefitList(th.QualifyingBenefits))
		}

		if th.IncomeTestedBenefit != "" && held.Has(th.IncomeTestedBenefit) {
			threshold := th.IncomeThreshold(l.PartnerBenefitClaim)
			claim := "single claim"
			if l.PartnerBenefitClaim {
				claim = "joint claim"
			}
			if l.TakeHomePay.LessThan(threshold) {
				return generic.Eligible(fmt.Sprintf("Eligible - receiving %s with income %s below %s threshold (%s)",
					benefitName(th.IncomeTestedBenefit), l.TakeHomePay, threshold, claim))
			}
			return generic.Ineligible(fmt.Sprintf("Not eligible - %s income %s is not below the %s threshold (%s)",
				benefitName(th.IncomeTestedBenefit), l.TakeHomePay, threshold, claim))
		}

		flat := held.Intersect(th.FlatRateBenefits()...)
		names := make([]string, len(flat))
		for i, b := range flat {
			names[i] = benefitName(b)
		}
		return generic.Eligible(fmt.Sprintf("Eligible - receiving %s (unemployment benefit)", strings.Join(names, "/")))
	}
}

func benefitName(b Benefit) string {
	switch b {
	case BenefitUniversalCredit:
		return "Universal Credit"
	default:
		return strings.ToUpper(string(b))
	}
}

// benefitList renders "JSA, ESA, or Universal Credit".
func benefitList(bs []Benefit) string {
	set := NewBenefitSet(bs...)
	names := make([]string, len(set))
	for i, b := range set {
		names[i] = benefitName(b)
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}

// =============================================================================
// ADVANCED LEARNER LOAN
// =============================================================================

func loanRule(th Thresholds) generic.Predicate[Subject] {
	return func(s Subject) generic.Verdict {
		age := s.Learner.Age
		if !age.Known() {
			return generic.Ineligible(reasonUnknownAge)
		}
		if !age.AtLeast(th.AdultMinAge) {
			return tooYoung(th.AdultMinAge, age)
		}

		level, source := s.RelevantLevel()
		minimum := levelLabel(th.HigherLevels[0]) + " or above"
		if source == LevelSourceCourse {
			if th.IsHigherLevel(level) {
				return generic.Eligible(fmt.Sprintf("Eligible - age %s (%d+) studying %s qualification",
					age, th.AdultMinAge, levelLabel(level)))
			}
			return generic.Ineligible(fmt.Sprintf("Not eligible - course must be %s (current: %s)",
				minimum, levelLabel(level)))
		}
		if th.IsHigherLevel(level) {
			return generic.Eligible(fmt.Sprintf("Eligible - age %s (%d+) holding %s qualification (learner's highest level)",
				age, th.AdultMinAge, levelLabel(level)))
		}
		return generic.Ineligible(fmt.Sprintf("Not eligible - qualification must be %s (learner's highest: %s)",
			minimum, levelLabel(level)))
	}
}

func levelLabel(l QualificationLevel) string {
	switch l {
	case "":
		return "Level not specified"
	case LevelNone:
		return "No qualifications"
	default:
		return "Level " + string(l)
	}
}
