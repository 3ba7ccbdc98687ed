/*
assessor.go - The eligibility evaluator

PURPOSE:
  Applies the funding rule table to one learner and an optional
  qualification and returns a complete Assessment: one result per stream,
  the derived summary, the primary recommendation and a learner snapshot.

CONTRACT:
  Evaluate is pure, total and deterministic. It never returns an error and
  never panics on well-typed input. An unknown age fails every numeric
  comparison and yields uniformly ineligible results.

QUALIFICATION MODE:
  qual == nil, or qual without a level: the loan rule uses the learner's
  own highest level (LevelSourceLearner). Otherwise it uses the course
  level (LevelSourceCourse). Assessment.LevelSource records which.

TIME:
  EvaluatedAt comes from an injected clock. It is the only field that may
  differ between two evaluations of the same input, and Equal ignores it.

SEE ALSO:
  - rules.go: The rule table
  - validation.go: Produces the LearnerProfile passed in here
*/
package funding

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/warp/funding-engine/generic"
)

// AuthorityResolver maps a postcode to its funding authority.
// postcode.Resolver satisfies it.
type AuthorityResolver interface {
	Resolve(postcode string) (string, bool)
}

// Recommendation is the single stream suggested to the learner.
type Recommendation struct {
	Stream    generic.StreamID `json:"stream"`
	Title     string           `json:"title"`
	Reasoning string           `json:"reasoning"`
}

// NoFundingFound is returned as the primary recommendation when no stream is eligible.
var NoFundingFound = Recommendation{
	Title:     "No suitable funding found",
	Reasoning: "Consider reviewing eligibility criteria or exploring alternative options",
}

var recommendationReasoning = map[generic.StreamID]string{
	Stream16To19:              "Primary pathway for young learners - fully funded",
	StreamFreeCoursesForJobs:  "Best option for unemployed adults - fully funded with no repayment",
	StreamAdult:               "Standard adult funding pathway",
	StreamAdvancedLearnerLoan: "Loan-based funding for higher level qualifications",
	StreamApprenticeship:      "Work-based learning with employer involvement",
}

// Assessment is the full outcome of one evaluation. Never mutated after creation.
type Assessment struct {
	Results     []generic.Result `json:"results"`
	Summary     generic.Summary  `json:"summary"`
	Primary     Recommendation   `json:"primaryRecommendation"`
	Profile     Snapshot         `json:"learnerProfile"`
	LevelSource LevelSource      `json:"levelSource"`
	EvaluatedAt time.Time        `json:"evaluatedAt"`
}

// Result returns the result for one stream.
func (a Assessment) Result(id generic.StreamID) (generic.Result, bool) {
	for _, r := range a.Results {
		if r.Stream == id {
			return r, true
		}
	}
	return generic.Result{}, false
}

// Eligible reports whether the stream was found eligible.
func (a Assessment) Eligible(id generic.StreamID) bool {
	r, ok := a.Result(id)
	return ok && r.Eligible
}

// Equal compares two assessments byte for byte, ignoring EvaluatedAt.
func (a Assessment) Equal(o Assessment) bool {
	a.EvaluatedAt, o.EvaluatedAt = time.Time{}, time.Time{}
	ab, errA := json.Marshal(a)
	ob, errO := json.Marshal(o)
	return errA == nil && errO == nil && bytes.Equal(ab, ob)
}

// =============================================================================
// ASSESSOR
// =============================================================================

// Assessor evaluates learners. Safe for concurrent use; it holds no mutable state.
type Assessor struct {
	thresholds  Thresholds
	table       *generic.RuleTable[Subject]
	now         func() time.Time
	authorities AuthorityResolver
}

// Option configures the Assessor.
type Option func(*Assessor)

// WithClock sets the clock used for EvaluatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Assessor) {
		a.now = now
	}
}

// WithAuthorities sets the resolver used to name the learner's funding authority.
func WithAuthorities(r AuthorityResolver) Option {
	return func(a *Assessor) {
		a.authorities = r
	}
}

// NewAssessor validates th and builds the rule table from it.
func NewAssessor(th Thresholds, opts ...Option) (*Assessor, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	th = th.Freeze()
	a := &Assessor{
		thresholds: th,
		table:      newRuleTable(th),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Thresholds returns a copy of the configuration in use.
func (a *Assessor) Thresholds() Thresholds { return a.thresholds.Freeze() }

// Streams returns the rule table's streams in definition order.
func (a *Assessor) Streams() []generic.Rule[Subject] { return a.table.Rules() }

// Evaluate assesses learner against qual. qual may be nil.
func (a *Assessor) Evaluate(learner LearnerProfile, qual *QualificationProfile) Assessment {
	subject := Subject{Learner: learner, Qualification: qual}
	_, source := subject.RelevantLevel()

	results := a.table.Evaluate(subject)
	summary := a.table.Summarize(results)

	profile := newSnapshot(learner, a.thresholds)
	if a.authorities != nil && learner.Postcode != "" {
		if label, ok := a.authorities.Resolve(learner.Postcode); ok {
			profile.Authority = label
		}
	}

	return Assessment{
		Results:     results,
		Summary:     summary,
		Primary:     recommend(summary.Primary),
		Profile:     profile,
		LevelSource: source,
		EvaluatedAt: a.now().UTC(),
	}
}

func recommend(id generic.StreamID) Recommendation {
	if id == "" {
		return NoFundingFound
	}
	return Recommendation{
		Stream:    id,
		Title:     streamTitle(id),
		Reasoning: recommendationReasoning[id],
	}
}
