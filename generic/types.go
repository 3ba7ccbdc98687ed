/*
Package generic provides the core rule-table engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms for evaluating
  a fixed table of independent eligibility rules against a subject. Whether
  the subject is a learner applying for course funding or anything else
  expressed as threshold and membership checks, the same engine handles
  exhaustive rule evaluation, verdict collection and summary derivation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency quantity (take-home pay, funding rates, thresholds)
  - Measure: An integer that may be "not a number"
  - StreamID: Type-safe identifier of a funding stream
  - Verdict / Result: The outcome of one rule for one subject

DESIGN PRINCIPLES:
  1. Totality: Every rule is evaluated; no stream is silently omitted
  2. Precision: Uses decimal.Decimal to avoid floating-point errors on money
  3. Type Safety: Strong typing for IDs prevents mixing streams and course refs
  4. NaN semantics: an unknown Measure fails every comparison

USAGE:
  age := generic.ParseMeasure("17")
  age.Between(16, 18)          // true
  generic.ParseMeasure("abc").AtLeast(0) // false

SEE ALSO:
  - rule.go: Rule table definition and evaluation
  - registry.go: Stream descriptor registry
  - store.go: Reference data persistence interfaces
*/
package generic

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount (always GBP for this system)
// =============================================================================

type Money struct {
	Value    decimal.Decimal
	Currency Currency
}

type Currency string

const CurrencyGBP Currency = "GBP"

func NewMoney(value int64) Money {
	return Money{Value: decimal.NewFromInt(value), Currency: CurrencyGBP}
}

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero, Currency: CurrencyGBP}
	}
	return Money{Value: d, Currency: CurrencyGBP}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero, Currency: CurrencyGBP} }

func (m Money) IsNegative() bool         { return m.Value.IsNegative() }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsPositive() bool         { return m.Value.IsPositive() }
func (m Money) LessThan(o Money) bool    { return m.Value.LessThan(o.Value) }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) Equal(o Money) bool       { return m.Value.Equal(o.Value) }

// String renders whole amounts without decimals ("£345") and fractional
// amounts with pence ("£345.50").
func (m Money) String() string {
	if m.Value.IsInteger() {
		return "£" + m.Value.String()
	}
	return "£" + m.Value.StringFixed(2)
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Value = d
	m.Currency = CurrencyGBP
	return nil
}

// =============================================================================
// MEASURE - Integer that may be "not a number"
// =============================================================================

// Measure is an integer reading taken from untrusted input. A Measure that
// could not be parsed is unknown, and every comparison on it returns false.
type Measure struct {
	value int
	known bool
}

// NewMeasure returns a known measure.
func NewMeasure(v int) Measure { return Measure{value: v, known: true} }

// UnknownMeasure returns the "not a number" measure.
func UnknownMeasure() Measure { return Measure{} }

// ParseMeasure reads a leading integer from s. Surrounding whitespace and a
// single sign are accepted; parsing stops at the first non-digit, so "17abc"
// reads as 17 and "16.9" as 16. Input with no leading digits is unknown.
func ParseMeasure(s string) Measure {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return UnknownMeasure()
	}
	// Out of range input saturates at the int bounds.
	v, err := strconv.Atoi(s[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return UnknownMeasure()
	}
	return NewMeasure(v)
}

func (m Measure) Known() bool { return m.known }

// Int returns the value and whether it is known.
func (m Measure) Int() (int, bool) { return m.value, m.known }

func (m Measure) AtLeast(n int) bool      { return m.known && m.value >= n }
func (m Measure) AtMost(n int) bool       { return m.known && m.value <= n }
func (m Measure) LessThan(n int) bool     { return m.known && m.value < n }
func (m Measure) Between(lo, hi int) bool { return m.known && m.value >= lo && m.value <= hi }

func (m Measure) String() string {
	if !m.known {
		return "NaN"
	}
	return strconv.Itoa(m.value)
}

// MarshalJSON writes null for an unknown measure.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.known {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON reads strings with ParseMeasure and numbers by value, so
// 1e2 is 100 and 17.9 is 17.
func (m *Measure) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*m = UnknownMeasure()
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		*m = ParseMeasure(strings.Trim(s, `"`))
		return nil
	}
	n, err := json.Number(s).Float64()
	if err != nil {
		*m = ParseMeasure(s)
		return nil
	}
	*m = ParseMeasure(strconv.FormatFloat(math.Trunc(n), 'f', -1, 64))
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// StreamID identifies a funding stream. Domain packages declare the concrete
// values and register descriptors for them (see registry.go).
type StreamID string

func (s StreamID) String() string { return string(s) }

// =============================================================================
// VERDICT - Outcome of a single rule
// =============================================================================

// Verdict is what a rule predicate returns. Reason must be deterministic for
// identical inputs and should name the threshold compared and the actual value.
type Verdict struct {
	Eligible bool
	Reason   string
}

func Eligible(reason string) Verdict   { return Verdict{Eligible: true, Reason: reason} }
func Ineligible(reason string) Verdict { return Verdict{Eligible: false, Reason: reason} }

// Result is a verdict attributed to the stream that produced it.
type Result struct {
	Stream   StreamID `json:"stream"`
	Title    string   `json:"title"`
	Eligible bool     `json:"eligible"`
	Reason   string   `json:"reasoning"`
}
