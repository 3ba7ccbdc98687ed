// Package funding implements learner funding eligibility.
// It uses the generic rule-table engine with the five funding streams,
// their thresholds, and the input validator that guards them.
package funding

import (
	"sort"

	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// FUNDING STREAMS
// =============================================================================

const (
	Stream16To19              generic.StreamID = "16-19"
	StreamAdult               generic.StreamID = "adult"
	StreamFreeCoursesForJobs  generic.StreamID = "freeCoursesForJobs"
	StreamAdvancedLearnerLoan generic.StreamID = "advancedLearnerLoan"
	StreamApprenticeship      generic.StreamID = "apprenticeship"
)

const domain = "funding"

// Register all funding streams with the generic registry
func init() {
	generic.RegisterStream(generic.StreamDescriptor{ID: Stream16To19, Title: "16-19 Education Funding", Domain: domain})
	generic.RegisterStream(generic.StreamDescriptor{ID: StreamAdult, Title: "Adult Education Budget", Domain: domain})
	generic.RegisterStream(generic.StreamDescriptor{ID: StreamFreeCoursesForJobs, Title: "Free Courses for Jobs", Domain: domain})
	generic.RegisterStream(generic.StreamDescriptor{ID: StreamAdvancedLearnerLoan, Title: "Advanced Learner Loan", Domain: domain})
	generic.RegisterStream(generic.StreamDescriptor{ID: StreamApprenticeship, Title: "Apprenticeship Funding", Domain: domain})
}

// =============================================================================
// EMPLOYMENT STATUS
// =============================================================================

type EmploymentStatus string

const (
	Employed     EmploymentStatus = "employed"
	Unemployed   EmploymentStatus = "unemployed"
	SelfEmployed EmploymentStatus = "self-employed"
	Student      EmploymentStatus = "student"
)

func AllEmploymentStatuses() []EmploymentStatus {
	return []EmploymentStatus{Employed, Unemployed, SelfEmployed, Student}
}

func (s EmploymentStatus) Valid() bool {
	for _, v := range AllEmploymentStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// =============================================================================
// BENEFITS
// =============================================================================

type Benefit string

const (
	BenefitJSA             Benefit = "jsa"
	BenefitESA             Benefit = "esa"
	BenefitUniversalCredit Benefit = "universal-credit"
	BenefitPIP             Benefit = "pip"
	BenefitOther           Benefit = "other"
)

func AllBenefits() []Benefit {
	return []Benefit{BenefitJSA, BenefitESA, BenefitUniversalCredit, BenefitPIP, BenefitOther}
}

func (b Benefit) Valid() bool { return benefitRank(b) >= 0 }

func benefitRank(b Benefit) int {
	for i, v := range AllBenefits() {
		if b == v {
			return i
		}
	}
	return -1
}

// BenefitSet holds unique benefits in canonical order, so two sets with the
// same members always render identically.
type BenefitSet []Benefit

// NewBenefitSet de-duplicates and orders bs. Unknown codes sort last.
func NewBenefitSet(bs ...Benefit) BenefitSet {
	seen := make(map[Benefit]bool, len(bs))
	set := BenefitSet{}
	for _, b := range bs {
		if !seen[b] {
			seen[b] = true
			set = append(set, b)
		}
	}
	sort.SliceStable(set, func(i, j int) bool {
		ri, rj := benefitRank(set[i]), benefitRank(set[j])
		if ri < 0 {
			ri = len(AllBenefits())
		}
		if rj < 0 {
			rj = len(AllBenefits())
		}
		return ri < rj
	})
	return set
}

func (s BenefitSet) Has(b Benefit) bool {
	for _, v := range s {
		if v == b {
			return true
		}
	}
	return false
}

func (s BenefitSet) HasAny(bs ...Benefit) bool {
	for _, b := range bs {
		if s.Has(b) {
			return true
		}
	}
	return false
}

// Intersect returns members of s that are also in bs, de-duplicated and in
// canonical order.
func (s BenefitSet) Intersect(bs ...Benefit) BenefitSet {
	out := []Benefit{}
	for _, v := range s {
		for _, b := range bs {
			if v == b {
				out = append(out, v)
				break
			}
		}
	}
	return NewBenefitSet(out...)
}

// =============================================================================
// QUALIFICATION LEVELS
// =============================================================================

type QualificationLevel string

const (
	LevelNone  QualificationLevel = "none"
	Level1     QualificationLevel = "1"
	Level2     QualificationLevel = "2"
	Level3     QualificationLevel = "3"
	Level4Plus QualificationLevel = "4+"
)

func AllQualificationLevels() []QualificationLevel {
	return []QualificationLevel{LevelNone, Level1, Level2, Level3, Level4Plus}
}

func (l QualificationLevel) Valid() bool {
	for _, v := range AllQualificationLevels() {
		if l == v {
			return true
		}
	}
	return false
}

// LevelSource says where the level used by the loan rule came from.
type LevelSource string

const (
	LevelSourceCourse  LevelSource = "course"
	LevelSourceLearner LevelSource = "learner"
)
