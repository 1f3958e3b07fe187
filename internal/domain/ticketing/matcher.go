package ticketing

import "strings"

// SummaryMatcher decides whether a ticket summary refers to a given
// entitlement name. Matching ticket free text to catalog entries is a
// best-effort heuristic, so the strategy is swappable per deployment;
// a failed match surfaces as an ambiguity, never a silent skip.
type SummaryMatcher interface {
	// Matches reports whether the summary refers to the entitlement name
	Matches(summary, entitlementName string) bool
}

// SubstringMatcher is the default strategy: case-insensitive containment of
// the entitlement name in the ticket summary.
type SubstringMatcher struct{}

// NewSubstringMatcher creates the default summary matcher.
func NewSubstringMatcher() SummaryMatcher {
	return SubstringMatcher{}
}

// Matches implements SummaryMatcher.
func (SubstringMatcher) Matches(summary, entitlementName string) bool {
	if summary == "" || entitlementName == "" {
		return false
	}
	return strings.Contains(strings.ToLower(summary), strings.ToLower(entitlementName))
}
