package retrieve

import (
	"context"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grounder/internal/domain"
	"github.com/kailas-cloud/grounder/internal/domain/knn"
	"github.com/kailas-cloud/grounder/internal/domain/passage"
	"github.com/kailas-cloud/grounder/internal/domain/search/filter"
	"github.com/kailas-cloud/grounder/internal/domain/search/request"
	"github.com/kailas-cloud/grounder/internal/domain/search/result"
)

// --- Mocks ---

type fakeCorpus struct {
	records []passage.Record
	matrix  *knn.Matrix
}

func (c *fakeCorpus) Size() int                    { return len(c.records) }
func (c *fakeCorpus) Record(i int) *passage.Record { return &c.records[i] }
func (c *fakeCorpus) Vectors() *knn.Matrix         { return c.matrix }
func (c *fakeCorpus) Dim() int                     { return c.matrix.Dim() }

type fakeProvider struct {
	cor Corpus
	err error
}

func (p *fakeProvider) Corpus() (Corpus, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.cor, nil
}

type mockEmbedder struct {
	vec    []float32
	tokens int
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	// Копия — сервис нормализует вектор на месте
	vec := make([]float32, len(m.vec))
	copy(vec, m.vec)
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: m.tokens}, nil
}

// --- Fixture corpus ---

type passageSpec struct {
	docID     string
	passageID string
	score     float32 // similarity against the {1,0,0,0} test query
	title     string
	county    string
	topics    []string
	date      string
}

// testCorpus builds a seven-passage corpus whose similarity against the unit
// query {1,0,0,0} is exactly each spec's score: vectors are {s, sqrt(1-s^2), 0, 0}.
//
// idx  doc    score  county     topics            date
//  0   doc-a  0.95   Lane       climate           2025-01-10
//  1   doc-a  0.90   Lane       climate,grants    2025-02-01
//  2   doc-b  0.85   Harney     grants            2024-11-20
//  3   doc-a  0.80   Lane       housing           2025-03-05
//  4   doc-c  0.75   Multnomah  food              (undated)
//  5   (none) 0.70   (none)     climate           2025-01-01
//  6   (none) 0.65   (none)     (none)            (undated)
func testCorpus(t *testing.T) *fakeCorpus {
	t.Helper()

	specs := []passageSpec{
		{"doc-a", "p-000", 0.95, "Wildfire Recovery Grants", "Lane", []string{"climate"}, "2025-01-10"},
		{"doc-a", "p-001", 0.90, "Wildfire Recovery Grants", "Lane", []string{"climate", "grants"}, "2025-02-01"},
		{"doc-b", "p-002", 0.85, "Rural Business Fund", "Harney", []string{"grants"}, "2024-11-20"},
		{"doc-a", "p-003", 0.80, "Wildfire Recovery Grants", "Lane", []string{"housing"}, "2025-03-05"},
		{"doc-c", "p-004", 0.75, "Food Security Program", "Multnomah", []string{"food"}, ""},
		{"", "p-005", 0.70, "Climate Newsletter", "", []string{"climate"}, "2025-01-01"},
		{"", "p-006", 0.65, "Orphan Clipping", "", nil, ""},
	}

	m, err := knn.NewMatrix(len(specs), 4)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}

	records := make([]passage.Record, len(specs))
	for i, sp := range specs {
		vec := []float32{sp.score, float32(math.Sqrt(1 - float64(sp.score)*float64(sp.score))), 0, 0}
		if err := m.SetRow(i, vec); err != nil {
			t.Fatalf("SetRow(%d): %v", i, err)
		}
		records[i] = passage.Reconstruct(
			sp.docID, sp.passageID, m.Row(i),
			sp.title, "https://example.org/"+sp.passageID,
			passage.ParseDate(sp.date), sp.county, sp.topics,
			"Passage text for "+sp.passageID,
		)
	}

	return &fakeCorpus{records: records, matrix: m}
}

func newTestService(cor Corpus, embed Embedder) *Service {
	return New(&fakeProvider{cor: cor}, embed, zap.NewNop())
}

// unitQuery is the test query vector all fixture scores are defined against.
func unitQuery() []float32 { return []float32{1, 0, 0, 0} }

func makeRequest(t *testing.T, k int, filt *filter.Filter) *request.Request {
	t.Helper()
	r, err := request.New("wildfire recovery grants", k, filt)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func makeFilter(t *testing.T, topics, counties []string, dateFrom, dateTo string) *filter.Filter {
	t.Helper()
	f, err := filter.New(topics, counties, dateFrom, dateTo)
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	return &f
}

// assertHitOrder compares the passage IDs of hits against the expected order.
func assertHitOrder(t *testing.T, hits []result.Hit, want ...string) {
	t.Helper()
	if len(hits) != len(want) {
		t.Fatalf("expected %d hits %v, got %d", len(want), want, len(hits))
	}
	for i := range want {
		if got := hits[i].Record().PassageID(); got != want[i] {
			t.Errorf("hit[%d] = %s, expected %s", i, got, want[i])
		}
	}
}
