package ticketing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstringMatcher(t *testing.T) {
	m := NewSubstringMatcher()

	tests := []struct {
		name        string
		summary     string
		entitlement string
		want        bool
	}{
		{"exact containment", "Access: Reporting Viewer", "Reporting Viewer", true},
		{"case insensitive", "access: REPORTING viewer", "Reporting Viewer", true},
		{"no match", "Access: Billing Admin", "Reporting Viewer", false},
		{"empty summary", "", "Reporting Viewer", false},
		{"empty entitlement name", "Access: Reporting Viewer", "", false},
		{"partial word still matches", "Need ReportingViewerAccess asap", "ReportingViewer", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Matches(tc.summary, tc.entitlement))
		})
	}
}
