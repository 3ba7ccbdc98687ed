/*
Package courses provides the course catalogue and merges course funding
with a learner's eligibility.

PURPOSE:
  A course (qualification, learning aim) carries its own per-stream funding
  data: whether the stream funds it and at what rate. Eligibility says what
  the learner may receive; the course says what is on offer. FundedOptions
  brings the two together for display.

KEY CONCEPTS:
  Course:        Qualification profile plus catalogue metadata
  Catalogue:     Course records over a generic.CourseStore
  FundedOption:  One stream's eligibility and course funding side by side

SEARCH:
  A case-insensitive substring match over learning aim reference or title.
  The term is sanitized first; an empty term matches nothing.

SEE ALSO:
  - funding/profile.go: QualificationProfile
  - sample.go: The seeded sample courses
  - factory/courses.go: JSON import of course files
*/
package courses

import (
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// Status values used by the catalogue.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Course is a catalogue entry.
type Course struct {
	funding.QualificationProfile

	AwardOrgCode string `json:"awardOrgCode,omitempty"`
	Status       string `json:"status,omitempty"`
	Sector       string `json:"sector,omitempty"`
}

// Ref returns the learning aim reference.
func (c Course) Ref() string { return c.LearningAimRef }

// Profile returns the qualification profile used by the assessor.
func (c Course) Profile() *funding.QualificationProfile {
	p := c.QualificationProfile
	if c.FundingStreams != nil {
		p.FundingStreams = make(map[generic.StreamID]funding.StreamFunding, len(c.FundingStreams))
		for k, v := range c.FundingStreams {
			p.FundingStreams[k] = v
		}
	}
	return &p
}

// IsActive reports whether the course is currently offered.
func (c Course) IsActive() bool { return c.Status == "" || c.Status == StatusActive }
