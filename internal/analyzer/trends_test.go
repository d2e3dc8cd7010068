// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package analyzer

import (
	"testing"
)

func TestExtractWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"stop words only", "the and for with", []string{}},
		{"short words dropped", "go is ok but concurrency matters", []string{"concurrency", "matters"}},
		{"lowercased", "Emergent BEHAVIOR patterns", []string{"emergent", "behavior", "patterns"}},
		{"punctuation ignored", "tokens, context-windows; embeddings!", []string{"tokens", "context", "windows", "embeddings"}},
		{"digit-adjacent runs excluded", "gpt5 released 2026 benchmarks", []string{"released", "benchmarks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractWords(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractWords(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Word %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	t.Parallel()

	texts := []string{
		"emergence emergence emergence",
		"alignment emergence alignment",
		"benchmarks",
	}

	counts := CountWords(texts, 0)
	if counts["emergence"] != 4 {
		t.Errorf("Expected emergence count 4, got %d", counts["emergence"])
	}
	if counts["alignment"] != 2 {
		t.Errorf("Expected alignment count 2, got %d", counts["alignment"])
	}
	if counts["benchmarks"] != 1 {
		t.Errorf("Expected benchmarks count 1, got %d", counts["benchmarks"])
	}
}

func TestCountWordsTopN(t *testing.T) {
	t.Parallel()

	texts := []string{
		"emergence emergence emergence alignment alignment benchmarks",
	}

	counts := CountWords(texts, 2)
	if len(counts) != 2 {
		t.Fatalf("Expected 2 words kept, got %d", len(counts))
	}
	if _, ok := counts["emergence"]; !ok {
		t.Error("Expected emergence in top words")
	}
	if _, ok := counts["alignment"]; !ok {
		t.Error("Expected alignment in top words")
	}
	if _, ok := counts["benchmarks"]; ok {
		t.Error("benchmarks should be cut by top-N")
	}
}
