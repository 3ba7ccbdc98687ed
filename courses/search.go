package courses

import "strings"

const maxSearchTermLength = 100

// SanitizeSearchTerm trims the term, drops angle brackets and caps its length.
func SanitizeSearchTerm(term string) string {
	term = strings.TrimSpace(term)
	term = strings.NewReplacer("<", "", ">", "").Replace(term)
	if r := []rune(term); len(r) > maxSearchTermLength {
		term = string(r[:maxSearchTermLength])
	}
	return term
}
