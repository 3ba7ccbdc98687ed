package courses

import (
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// FUNDED OPTIONS - Eligibility merged with course funding
// =============================================================================

// FundedOption is one stream as it applies to one learner on one course.
type FundedOption struct {
	Stream       generic.StreamID `json:"stream"`
	Title        string           `json:"title"`
	Eligible     bool             `json:"eligible"`
	Reasoning    string           `json:"reasoning"`
	Funded       bool             `json:"funded"`
	Rate         generic.Money    `json:"rate"`
	Compatible   bool             `json:"compatible"`
	OpenForStart bool             `json:"openForStart"`

	// Available is true when the learner is eligible, the course is funded
	// under the stream and the course accepts new starts on the given date.
	Available bool `json:"available"`
}

// FundedOptions lists every assessed stream in assessment order.
func FundedOptions(course Course, a funding.Assessment, asOf generic.Date) []FundedOption {
	open := course.IsActive() && course.OpenForStart(asOf)
	out := make([]FundedOption, 0, len(a.Results))
	for _, r := range a.Results {
		f := course.Funding(r.Stream)
		out = append(out, FundedOption{
			Stream:       r.Stream,
			Title:        r.Title,
			Eligible:     r.Eligible,
			Reasoning:    r.Reason,
			Funded:       f.Funded,
			Rate:         f.Rate,
			Compatible:   course.CompatibleWith(r.Stream),
			OpenForStart: open,
			Available:    r.Eligible && f.Funded && open,
		})
	}
	return out
}

// AvailableOptions filters FundedOptions to what the learner can actually take up.
func AvailableOptions(opts []FundedOption) []FundedOption {
	out := []FundedOption{}
	for _, o := range opts {
		if o.Available {
			out = append(out, o)
		}
	}
	return out
}
