package generic

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day (course enrollment windows)
// =============================================================================

const DateLayout = "2006-01-02"

// Date is a calendar day in UTC. The zero Date means "not set".
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate reads a YYYY-MM-DD string. An empty string is the zero Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool         { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool         { return d.Time.Equal(o.Time) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) IsZero() bool              { return d.Time.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// WINDOW - Enrollment window of a course
// =============================================================================

// Window bounds when a course accepts new starts and when certification ends.
// Zero bounds are open.
type Window struct {
	LastNewStart     Date `json:"lastNewStartDate"`
	CertificationEnd Date `json:"certificationEndDate"`
}

// OpenForStart reports whether a learner starting on d is within the window.
// Both bounds are inclusive.
func (w Window) OpenForStart(d Date) bool {
	return (w.LastNewStart.IsZero() || d.BeforeOrEqual(w.LastNewStart)) &&
		(w.CertificationEnd.IsZero() || d.BeforeOrEqual(w.CertificationEnd))
}

// Validate checks that certification does not end before the last start.
func (w Window) Validate() error {
	if w.LastNewStart.IsZero() || w.CertificationEnd.IsZero() {
		return nil
	}
	if w.CertificationEnd.Before(w.LastNewStart) {
		return fmt.Errorf("%w: certification end %s before last new start %s",
			ErrInvalidConfig, w.CertificationEnd, w.LastNewStart)
	}
	return nil
}
