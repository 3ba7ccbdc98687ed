/*
Package postcode resolves postcodes to funding authorities.

PURPOSE:
  A flat lookup from normalized postcode to an authority label such as
  "Greater London Authority (GLA)". The mapping is static reference data
  built offline from a tabular source (see build.go) and loaded once at
  startup. Lookups never fail: an empty or unknown postcode is a miss.

NORMALIZATION:
  All whitespace is removed and letters are uppercased, so "sw1a 1aa",
  "SW1A1AA" and " Sw1A  1aA " are the same key.

SEE ALSO:
  - build.go: CSV to mapping conversion
  - cmd/preprocess: Offline build of the mapping artifact
*/
package postcode

import (
	"context"
	"strings"
	"unicode"

	"github.com/warp/funding-engine/generic"
)

// Normalize strips all whitespace and uppercases.
func Normalize(pc string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, pc))
}

// Resolver is an immutable postcode to authority mapping.
type Resolver struct {
	entries map[string]string
}

// NewResolver copies entries, normalizing every key.
func NewResolver(entries map[string]string) *Resolver {
	m := make(map[string]string, len(entries))
	for k, v := range entries {
		if key := Normalize(k); key != "" {
			m[key] = v
		}
	}
	return &Resolver{entries: m}
}

// FromStore loads every mapping from an AuthorityStore.
func FromStore(ctx context.Context, s generic.AuthorityStore) (*Resolver, error) {
	all, err := s.AllAuthorities(ctx)
	if err != nil {
		return nil, err
	}
	return NewResolver(all), nil
}

// Resolve returns the authority label and whether the postcode was found.
func (r *Resolver) Resolve(pc string) (string, bool) {
	key := Normalize(pc)
	if key == "" || r == nil {
		return "", false
	}
	label, ok := r.entries[key]
	return label, ok
}

// Len returns the number of postcodes in the mapping.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
