package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelected(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantName  string
		wantWhy   string
		wantFound bool
	}{
		{
			name:      "canonical format",
			text:      "SELECTED: analyst\nREASONING: best fit for data work",
			wantName:  "analyst",
			wantWhy:   "best fit for data work",
			wantFound: true,
		},
		{
			name:      "case insensitive headers",
			text:      "selected: Analyst\nReasoning: obvious choice",
			wantName:  "Analyst",
			wantWhy:   "obvious choice",
			wantFound: true,
		},
		{
			name:      "leading whitespace",
			text:      "   SELECTED:   drafter  \n  REASONING: writes well",
			wantName:  "drafter",
			wantWhy:   "writes well",
			wantFound: true,
		},
		{
			name:      "multiline reasoning",
			text:      "SELECTED: w1\nREASONING: first line\nsecond line",
			wantName:  "w1",
			wantWhy:   "first line\nsecond line",
			wantFound: true,
		},
		{
			name:      "selected only",
			text:      "SELECTED: w1",
			wantName:  "w1",
			wantFound: true,
		},
		{
			name:      "no headers",
			text:      "I think the analyst should handle this",
			wantFound: false,
		},
		{
			name:      "empty selected",
			text:      "SELECTED:\nREASONING: none",
			wantWhy:   "none",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, why, ok := ParseSelected(tt.text)
			assert.Equal(t, tt.wantFound, ok)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantWhy, why)
		})
	}
}

func TestMatchCandidate(t *testing.T) {
	names := []string{"analyst", "summarizer", "FINISH"}

	tests := []struct {
		name     string
		response string
		want     string
		ok       bool
	}{
		{"exact", "analyst", "analyst", true},
		{"trimmed", "  analyst \n", "analyst", true},
		{"case folded", "ANALYST", "analyst", true},
		{"unique prefix", "analy", "analyst", true},
		{"contained in prose", "I would pick the summarizer for this", "summarizer", true},
		{"finish sentinel", "FINISH", "FINISH", true},
		{"selected line", "SELECTED: analyst\nREASONING: fits", "analyst", true},
		{"selected line loose", "Some preamble\nSELECTED: Summarizer", "summarizer", true},
		{"ambiguous prose", "either analyst or summarizer works", "", false},
		{"unknown name", "researcher", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchCandidate(tt.response, names)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchCandidateAmbiguousPrefix(t *testing.T) {
	names := []string{"writer_one", "writer_two"}
	_, ok := MatchCandidate("writer", names)
	assert.False(t, ok)
}
