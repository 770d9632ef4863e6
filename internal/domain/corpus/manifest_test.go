package corpus

import (
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	now := time.Now()
	m, err := New(now, 42, 1536, "text-embedding-3-small")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Count() != 42 {
		t.Errorf("Count() = %d", m.Count())
	}
	if m.Dim() != 1536 {
		t.Errorf("Dim() = %d", m.Dim())
	}
	if m.EmbedModel() != "text-embedding-3-small" {
		t.Errorf("EmbedModel() = %q", m.EmbedModel())
	}
	if m.PassagesFileName() != PassagesFile {
		t.Errorf("PassagesFileName() = %q", m.PassagesFileName())
	}
	if m.VectorsFileName() != VectorsFile {
		t.Errorf("VectorsFileName() = %q", m.VectorsFileName())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		count int
		dim   int
		model string
	}{
		{"negative_count", -1, 8, "m"},
		{"zero_dim", 0, 0, "m"},
		{"negative_dim", 0, -8, "m"},
		{"empty_model", 0, 8, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(time.Now(), tc.count, tc.dim, tc.model); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestReconstruct_DefaultsFileNames(t *testing.T) {
	m := Reconstruct(time.Time{}, 0, 0, "", "", "")
	if m.PassagesFileName() != PassagesFile || m.VectorsFileName() != VectorsFile {
		t.Errorf("expected default file names, got %q / %q", m.PassagesFileName(), m.VectorsFileName())
	}

	m2 := Reconstruct(time.Time{}, 1, 2, "m", "chunks.jsonl", "emb.parquet")
	if m2.PassagesFileName() != "chunks.jsonl" || m2.VectorsFileName() != "emb.parquet" {
		t.Errorf("expected custom file names, got %q / %q", m2.PassagesFileName(), m2.VectorsFileName())
	}
}
