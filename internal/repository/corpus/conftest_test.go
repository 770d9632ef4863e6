package corpus

import (
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grounder/internal/domain/passage"
)

const testModel = "text-embedding-3-small"

// testRecords is a small fixture corpus: two passages of one document, then
// two standalone documents, one of them undated and without a county.
func testRecords(t *testing.T) []passage.Record {
	t.Helper()
	return []passage.Record{
		passage.Reconstruct(
			"doc-ccf", "p-001", []float32{1, 0, 0, 0},
			"Community Climate Fund 2025 RFP", "https://ccf.example.org/rfp",
			passage.ParseDate("2025-02-01"), "Lane",
			[]string{"climate", "grants"},
			"The Community Climate Fund invites proposals up to $250,000 for county-level resilience projects.",
		),
		passage.Reconstruct(
			"doc-ccf", "p-002", []float32{0, 1, 0, 0},
			"Community Climate Fund 2025 RFP", "https://ccf.example.org/rfp",
			passage.ParseDate("2025-02-01"), "Lane",
			[]string{"climate", "grants"},
			"Eligible applicants include 501(c)(3) organizations operating for at least two years.",
		),
		passage.Reconstruct(
			"doc-lib", "p-003", []float32{0, 0, 1, 0},
			"Rural Library Renovation Awards", "https://libraries.example.org/awards",
			passage.ParseDate("2024-11-20"), "Harney",
			[]string{"libraries", "infrastructure"},
			"Renovation awards cover ADA accessibility upgrades for libraries serving under 10,000 residents.",
		),
		passage.Reconstruct(
			"doc-food", "p-004", []float32{0, 0, 0, 1},
			"Food Security Briefing", "",
			passage.ParseDate(""), "",
			[]string{"food"},
			"Cold storage capacity remains the binding constraint for rural food bank distribution.",
		),
	}
}

// writeTestCorpus writes the records to a fresh temp dir and returns it.
func writeTestCorpus(t *testing.T, records []passage.Record) string {
	t.Helper()
	dir := t.TempDir()
	if err := Write(dir, records, testModel); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return dir
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	return NewLoader(zap.NewNop())
}
