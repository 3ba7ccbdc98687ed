package generic_test

import (
	"errors"
	"testing"

	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func minAge(min int) generic.Predicate[generic.Measure] {
	return func(age generic.Measure) generic.Verdict {
		if age.AtLeast(min) {
			return generic.Eligible("old enough")
		}
		return generic.Ineligible("too young")
	}
}

func ageTable(t *testing.T) *generic.RuleTable[generic.Measure] {
	t.Helper()
	table, err := generic.NewRuleTable(
		generic.Rule[generic.Measure]{ID: "teen", Title: "Teen", Priority: 3, Check: func(age generic.Measure) generic.Verdict {
			if age.Between(13, 19) {
				return generic.Eligible("teen")
			}
			return generic.Ineligible("not a teen")
		}},
		generic.Rule[generic.Measure]{ID: "adult", Title: "Adult", Priority: 1, Check: minAge(18)},
		generic.Rule[generic.Measure]{ID: "senior", Title: "Senior", Priority: 2, Check: minAge(65)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

// =============================================================================
// CONSTRUCTION TESTS
// =============================================================================

func TestNewRuleTable_Empty(t *testing.T) {
	_, err := generic.NewRuleTable[int]()
	if !errors.Is(err, generic.ErrEmptyRuleTable) {
		t.Errorf("expected ErrEmptyRuleTable, got %v", err)
	}
}

func TestNewRuleTable_DuplicateStream(t *testing.T) {
	check := func(int) generic.Verdict { return generic.Eligible("") }
	_, err := generic.NewRuleTable(
		generic.Rule[int]{ID: "a", Check: check},
		generic.Rule[int]{ID: "a", Check: check},
	)

	var ruleErr *generic.RuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected RuleError, got %v", err)
	}
	if ruleErr.Stream != "a" || !errors.Is(err, generic.ErrDuplicateStream) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewRuleTable_NilPredicate(t *testing.T) {
	_, err := generic.NewRuleTable(generic.Rule[int]{ID: "a"})
	if !errors.Is(err, generic.ErrNilPredicate) {
		t.Errorf("expected ErrNilPredicate, got %v", err)
	}
}

func TestNewRuleTable_MissingID(t *testing.T) {
	_, err := generic.NewRuleTable(generic.Rule[int]{Check: func(int) generic.Verdict { return generic.Verdict{} }})
	if !errors.Is(err, generic.ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
}

func TestMustRuleTable_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty table")
		}
	}()
	generic.MustRuleTable[int]()
}

// =============================================================================
// EVALUATION TESTS
// =============================================================================

func TestEvaluate_EveryRuleInDefinitionOrder(t *testing.T) {
	// GIVEN: A table of three rules
	// WHEN: Evaluating any subject
	// THEN: Exactly three results come back, in definition order

	table := ageTable(t)
	for _, age := range []generic.Measure{generic.NewMeasure(10), generic.NewMeasure(18), generic.UnknownMeasure()} {
		results := table.Evaluate(age)
		if len(results) != table.Len() {
			t.Fatalf("expected %d results, got %d", table.Len(), len(results))
		}
		for i, id := range table.IDs() {
			if results[i].Stream != id {
				t.Errorf("result %d: expected %s, got %s", i, id, results[i].Stream)
			}
		}
	}
}

func TestEvaluate_CarriesTitleAndReason(t *testing.T) {
	results := ageTable(t).Evaluate(generic.NewMeasure(30))

	if results[1].Title != "Adult" || !results[1].Eligible || results[1].Reason != "old enough" {
		t.Errorf("unexpected adult result: %+v", results[1])
	}
	if results[0].Eligible {
		t.Error("30 should not be a teen")
	}
}

func TestEvaluate_UnknownMeasureFailsEverything(t *testing.T) {
	for _, r := range ageTable(t).Evaluate(generic.UnknownMeasure()) {
		if r.Eligible {
			t.Errorf("%s should be ineligible for an unknown age", r.Stream)
		}
	}
}

func TestLookup(t *testing.T) {
	table := ageTable(t)
	if r, ok := table.Lookup("senior"); !ok || r.Title != "Senior" {
		t.Errorf("expected senior rule, got %+v (ok=%v)", r, ok)
	}
	if _, ok := table.Lookup("missing"); ok {
		t.Error("expected lookup miss")
	}
}

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestSummarize_PrimaryFollowsPriorityNotOrder(t *testing.T) {
	// GIVEN: Age 18 is eligible for teen (priority 3) and adult (priority 1)
	// WHEN: Summarizing
	// THEN: Eligible streams keep definition order but primary is adult

	table := ageTable(t)
	s := table.Summarize(table.Evaluate(generic.NewMeasure(18)))

	if len(s.EligibleStreams) != 2 || s.EligibleStreams[0] != "teen" || s.EligibleStreams[1] != "adult" {
		t.Errorf("unexpected eligible streams: %v", s.EligibleStreams)
	}
	if s.Primary != "adult" {
		t.Errorf("expected primary adult, got %q", s.Primary)
	}
	if s.EligibilityRate != 67 {
		t.Errorf("expected rate 67, got %d", s.EligibilityRate)
	}
	if !s.HasAnyFunding || s.TotalEligible != 2 || s.TotalStreams != 3 {
		t.Errorf("unexpected counts: %+v", s)
	}
}

func TestSummarize_NoneEligible(t *testing.T) {
	table := ageTable(t)
	s := table.Summarize(table.Evaluate(generic.NewMeasure(5)))

	if s.Primary != "" || s.HasAnyFunding || s.EligibilityRate != 0 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.EligibleStreams == nil {
		t.Error("eligible streams should be empty, not nil")
	}
}
