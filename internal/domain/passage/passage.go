// Package passage holds the corpus passage value object: one chunk of ingested
// source text plus its precomputed unit-normalized embedding.
package passage

import (
	"fmt"
	"math"
	"time"
)

const (
	// MaxTextLength is the maximum passage content size in bytes.
	MaxTextLength = 8192
	// MaxIDLength is the maximum passage/document identifier length.
	MaxIDLength = 256

	// normTolerance bounds the accepted deviation from unit length. Vectors are
	// L2-normalized at ingest; float32 accumulation over a few thousand
	// dimensions stays well inside this.
	normTolerance = 1e-3
)

// Record is an immutable corpus passage.
//
// documentID may be empty: passages from legacy ingests occasionally lack one,
// and citation building falls back to a synthetic key derived from url/title.
type Record struct {
	documentID string
	passageID  string
	embedding  []float32
	title      string
	url        string
	date       time.Time // zero = undated
	county     string
	topics     []string
	text       string
}

// New validates and creates a Record. The date is ISO-8601 (yyyy-mm-dd); an
// empty or unparseable date yields an undated record rather than an error,
// matching what historical corpus files contain. Slices are copied.
func New(
	documentID, passageID string,
	embedding []float32,
	title, url, date, county string,
	topics []string,
	text string,
) (Record, error) {
	if passageID == "" {
		return Record{}, fmt.Errorf("passage ID is required")
	}
	if len(passageID) > MaxIDLength {
		return Record{}, fmt.Errorf("passage ID too long (max %d)", MaxIDLength)
	}
	if len(documentID) > MaxIDLength {
		return Record{}, fmt.Errorf("document ID too long (max %d)", MaxIDLength)
	}
	if len(embedding) == 0 {
		return Record{}, fmt.Errorf("embedding is required")
	}
	if err := checkUnitNorm(embedding); err != nil {
		return Record{}, err
	}
	if text == "" {
		return Record{}, fmt.Errorf("text is required")
	}
	if len(text) > MaxTextLength {
		return Record{}, fmt.Errorf("text too large (max %d bytes)", MaxTextLength)
	}

	return Record{
		documentID: documentID,
		passageID:  passageID,
		embedding:  cloneVector(embedding),
		title:      title,
		url:        url,
		date:       parseDate(date),
		county:     county,
		topics:     cloneTopics(topics),
		text:       text,
	}, nil
}

// Reconstruct creates a Record without validation or copying (storage hydration).
func Reconstruct(
	documentID, passageID string,
	embedding []float32,
	title, url string, date time.Time, county string,
	topics []string,
	text string,
) Record {
	return Record{
		documentID: documentID, passageID: passageID, embedding: embedding,
		title: title, url: url, date: date, county: county,
		topics: topics, text: text,
	}
}

// DocumentID returns the owning source document identifier (may be empty).
func (r *Record) DocumentID() string { return r.documentID }

// PassageID returns the corpus-unique passage identifier.
func (r *Record) PassageID() string { return r.passageID }

// Embedding returns the unit-normalized embedding vector.
func (r *Record) Embedding() []float32 { return r.embedding }

// Title returns the display title.
func (r *Record) Title() string { return r.title }

// URL returns the source URL (may be empty).
func (r *Record) URL() string { return r.url }

// Date returns the publication date and whether the record is dated.
func (r *Record) Date() (time.Time, bool) { return r.date, !r.date.IsZero() }

// County returns the county tag (may be empty).
func (r *Record) County() string { return r.county }

// Topics returns the topic tags.
func (r *Record) Topics() []string { return r.topics }

// Text returns the passage content.
func (r *Record) Text() string { return r.text }

// Dim returns the embedding dimensionality.
func (r *Record) Dim() int { return len(r.embedding) }

// ParseDate parses an ISO-8601 (yyyy-mm-dd) date. Empty or malformed input
// yields the zero time, i.e. an undated record.
func ParseDate(s string) time.Time { return parseDate(s) }

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}
	return d
}

func checkUnitNorm(v []float32) error {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if math.Abs(norm-1) > normTolerance {
		return fmt.Errorf("embedding is not unit-normalized (L2=%.6f)", norm)
	}
	return nil
}

func cloneVector(v []float32) []float32 {
	c := make([]float32, len(v))
	copy(c, v)
	return c
}

func cloneTopics(t []string) []string {
	if t == nil {
		return nil
	}
	c := make([]string, len(t))
	copy(c, t)
	return c
}
