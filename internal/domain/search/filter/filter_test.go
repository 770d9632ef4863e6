package filter

import (
	"testing"
	"time"

	"github.com/kailas-cloud/grounder/internal/domain/passage"
)

func rec(t *testing.T, date, county string, topics ...string) *passage.Record {
	t.Helper()
	var d time.Time
	if date != "" {
		var err error
		d, err = time.Parse(time.DateOnly, date)
		if err != nil {
			t.Fatalf("bad test date %q: %v", date, err)
		}
	}
	r := passage.Reconstruct("doc-1", "p-1", []float32{1, 0}, "Title", "", d, county, topics, "text")
	return &r
}

func mustNew(t *testing.T, topics, counties []string, from, to string) Filter {
	t.Helper()
	f, err := New(topics, counties, from, to)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestNew_NormalizesTerms(t *testing.T) {
	f := mustNew(t, []string{"  Housing ", "", "BROADBAND"}, []string{" Lake "}, "", "")
	if f.IsEmpty() {
		t.Fatal("expected non-empty filter")
	}
	if !f.Matches(rec(t, "", "Lake", "housing")) {
		t.Error("lowercased topic should match")
	}
	if !f.Matches(rec(t, "", "lake", "Broadband")) {
		t.Error("record topic casing should not matter")
	}
}

func TestNew_AllEmptyTermsCollapseToNoConstraint(t *testing.T) {
	f := mustNew(t, []string{"", "  "}, nil, "", "")
	if !f.IsEmpty() {
		t.Error("whitespace-only terms should leave the filter empty")
	}
}

func TestNew_TooManyTerms(t *testing.T) {
	terms := make([]string, MaxTermsPerField+1)
	for i := range terms {
		terms[i] = "t"
	}
	if _, err := New(terms, nil, "", ""); err == nil {
		t.Fatal("expected error for too many topics")
	}
}

func TestNew_BadDateBound(t *testing.T) {
	if _, err := New(nil, nil, "2025-13-01", ""); err == nil {
		t.Fatal("expected error for malformed date_from")
	}
	if _, err := New(nil, nil, "", "01/31/2025"); err == nil {
		t.Fatal("expected error for malformed date_to")
	}
}

func TestNew_InvertedWindow(t *testing.T) {
	if _, err := New(nil, nil, "2025-06-01", "2025-01-01"); err == nil {
		t.Fatal("expected error for date_to before date_from")
	}
}

func TestMatches_Topics(t *testing.T) {
	tests := []struct {
		name   string
		filter []string
		record []string
		want   bool
	}{
		{"no_constraint", nil, []string{"anything"}, true},
		{"intersects", []string{"housing", "health"}, []string{"Housing"}, true},
		{"disjoint", []string{"housing"}, []string{"broadband"}, false},
		{"record_without_topics", []string{"housing"}, nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := mustNew(t, tc.filter, nil, "", "")
			if got := f.Matches(rec(t, "", "", tc.record...)); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatches_Counties(t *testing.T) {
	tests := []struct {
		name   string
		filter []string
		county string
		want   bool
	}{
		{"no_constraint", nil, "Lake", true},
		{"member", []string{"lake", "mendocino"}, "Lake", true},
		{"non_member", []string{"lake"}, "Sonoma", false},
		{"record_without_county", []string{"lake"}, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := mustNew(t, nil, tc.filter, "", "")
			if got := f.Matches(rec(t, "", tc.county)); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatches_DateWindow(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		date     string
		want     bool
	}{
		{"no_bounds", "", "", "", true},
		{"no_bounds_dated", "", "", "2024-05-01", true},
		{"inside", "2025-01-01", "2025-12-31", "2025-06-15", true},
		{"before_from", "2025-01-01", "", "2024-12-31", false},
		{"after_to", "", "2025-01-01", "2025-01-02", false},
		{"exactly_from", "2025-01-01", "", "2025-01-01", true},
		{"exactly_to", "", "2025-01-01", "2025-01-01", true},
		// Strict policy: undated records fail any active bound.
		{"undated_with_from", "2025-01-01", "", "", false},
		{"undated_with_to", "", "2025-12-31", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := mustNew(t, nil, nil, tc.from, tc.to)
			if got := f.Matches(rec(t, tc.date, "")); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatches_AndCombined(t *testing.T) {
	f := mustNew(t, []string{"housing"}, []string{"lake"}, "2025-01-01", "")

	if !f.Matches(rec(t, "2025-02-01", "Lake", "housing")) {
		t.Error("record matching all three dimensions should pass")
	}
	if f.Matches(rec(t, "2025-02-01", "Lake", "broadband")) {
		t.Error("failing topics should fail the whole filter")
	}
	if f.Matches(rec(t, "2025-02-01", "Sonoma", "housing")) {
		t.Error("failing county should fail the whole filter")
	}
	if f.Matches(rec(t, "2024-02-01", "Lake", "housing")) {
		t.Error("failing date should fail the whole filter")
	}
}

func TestMatches_Idempotent(t *testing.T) {
	// Matching must not mutate filter or record state between calls.
	f := mustNew(t, []string{"housing"}, nil, "2025-01-01", "")
	r := rec(t, "2025-03-01", "Lake", "Housing")

	first := f.Matches(r)
	second := f.Matches(r)
	if first != second || !first {
		t.Errorf("Matches not stable: first=%v second=%v", first, second)
	}
}
