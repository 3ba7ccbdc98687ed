/*
rule.go - Rule definitions and the ordered rule table

PURPOSE:
  Defines the rules that decide whether a subject qualifies for a stream.
  A Rule is a data record {id, title, priority, predicate}; a RuleTable is
  the ordered list of them. Evaluation walks the whole table so every
  stream always produces exactly one result.

KEY CONCEPTS:
  - Rule: One stream's predicate plus display metadata
  - RuleTable: Immutable, ordered, duplicate-free list of rules
  - Summary: Derived view (eligible ids, rate, primary recommendation)

ORDERING:
  Definition order is display order. It never affects outcomes because
  rules are independent. Priority is a separate ranking used only to pick
  the primary recommendation.

EXAMPLE:
  table, err := NewRuleTable(
      Rule[int]{ID: "adult", Title: "Adult", Priority: 2, Check: func(age int) Verdict {...}},
      Rule[int]{ID: "young", Title: "Young", Priority: 1, Check: func(age int) Verdict {...}},
  )
  results := table.Evaluate(17)
  summary := table.Summarize(results)

SEE ALSO:
  - types.go: Verdict and Result
  - funding/rules.go: The funding stream table
*/
package generic

import (
	"fmt"
	"math"
	"sort"
)

// =============================================================================
// RULE - Predicate for one stream
// =============================================================================

// Predicate decides eligibility for one stream. It must be pure.
type Predicate[In any] func(In) Verdict

// Rule binds a predicate to the stream it decides.
type Rule[In any] struct {
	ID    StreamID
	Title string

	// Priority ranks streams for the primary recommendation. Lower wins.
	Priority int

	Check Predicate[In]
}

// =============================================================================
// RULE TABLE
// =============================================================================

// RuleTable is an ordered set of rules. It is immutable once built.
type RuleTable[In any] struct {
	rules []Rule[In]
}

// NewRuleTable validates and freezes rules in the given order.
func NewRuleTable[In any](rules ...Rule[In]) (*RuleTable[In], error) {
	if len(rules) == 0 {
		return nil, ErrEmptyRuleTable
	}

	seen := make(map[StreamID]bool, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: rule without id", ErrInvalidRule)
		}
		if r.Check == nil {
			return nil, &RuleError{Stream: r.ID, Err: ErrNilPredicate}
		}
		if seen[r.ID] {
			return nil, &RuleError{Stream: r.ID, Err: ErrDuplicateStream}
		}
		seen[r.ID] = true
	}

	frozen := make([]Rule[In], len(rules))
	copy(frozen, rules)
	return &RuleTable[In]{rules: frozen}, nil
}

// MustRuleTable is NewRuleTable for tables defined in code.
func MustRuleTable[In any](rules ...Rule[In]) *RuleTable[In] {
	t, err := NewRuleTable(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of streams in the table.
func (t *RuleTable[In]) Len() int { return len(t.rules) }

// IDs returns stream ids in definition order.
func (t *RuleTable[In]) IDs() []StreamID {
	ids := make([]StreamID, len(t.rules))
	for i, r := range t.rules {
		ids[i] = r.ID
	}
	return ids
}

// Rules returns a copy of the rules in definition order.
func (t *RuleTable[In]) Rules() []Rule[In] {
	out := make([]Rule[In], len(t.rules))
	copy(out, t.rules)
	return out
}

// Lookup finds a rule by stream id.
func (t *RuleTable[In]) Lookup(id StreamID) (Rule[In], bool) {
	for _, r := range t.rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule[In]{}, false
}

// Evaluate applies every rule to in. len(result) == t.Len() always.
func (t *RuleTable[In]) Evaluate(in In) []Result {
	results := make([]Result, len(t.rules))
	for i, r := range t.rules {
		v := r.Check(in)
		results[i] = Result{
			Stream:   r.ID,
			Title:    r.Title,
			Eligible: v.Eligible,
			Reason:   v.Reason,
		}
	}
	return results
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is derived from a full result set.
type Summary struct {
	TotalStreams    int        `json:"totalStreams"`
	TotalEligible   int        `json:"totalEligible"`
	EligibleStreams []StreamID `json:"eligibleStreams"`
	HasAnyFunding   bool       `json:"hasAnyFunding"`
	EligibilityRate int        `json:"eligibilityRate"`

	// Primary is the highest-priority eligible stream, or "" when none.
	Primary StreamID `json:"primaryStream"`
}

// Summarize derives the summary for results produced by this table.
func (t *RuleTable[In]) Summarize(results []Result) Summary {
	s := Summary{
		TotalStreams:    len(results),
		EligibleStreams: []StreamID{},
	}

	eligible := make(map[StreamID]bool, len(results))
	for _, r := range results {
		if r.Eligible {
			s.EligibleStreams = append(s.EligibleStreams, r.Stream)
			eligible[r.Stream] = true
		}
	}
	s.TotalEligible = len(s.EligibleStreams)
	s.HasAnyFunding = s.TotalEligible > 0
	if s.TotalStreams > 0 {
		s.EligibilityRate = int(math.Round(100 * float64(s.TotalEligible) / float64(s.TotalStreams)))
	}

	for _, r := range t.byPriority() {
		if eligible[r.ID] {
			s.Primary = r.ID
			break
		}
	}
	return s
}

// byPriority returns rules ranked for recommendation. Ties keep definition order.
func (t *RuleTable[In]) byPriority() []Rule[In] {
	ranked := t.Rules()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority < ranked[j].Priority
	})
	return ranked
}
