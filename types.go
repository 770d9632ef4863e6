package grounder

import (
	"time"

	"github.com/kailas-cloud/grounder/internal/domain/citation"
	"github.com/kailas-cloud/grounder/internal/domain/passage"
	"github.com/kailas-cloud/grounder/internal/domain/search/result"
	"github.com/kailas-cloud/grounder/internal/usecase/health"
)

// RetrieveOptions narrows and sizes a retrieval. The zero value retrieves
// the default number of passages over the whole corpus.
type RetrieveOptions struct {
	TopK     int      // 0 = default (6), capped at 50
	Topics   []string // case-insensitive, any-of
	Counties []string // case-insensitive, any-of
	DateFrom string   // ISO-8601 (yyyy-mm-dd), inclusive
	DateTo   string   // ISO-8601 (yyyy-mm-dd), inclusive
}

// Hit is one ranked retrieval result.
type Hit struct {
	Index      int // original corpus index
	Score      float32
	DocumentID string
	PassageID  string
	Title      string
	URL        string
	Date       string // ISO-8601 or empty
	County     string
	Topics     []string
	Text       string
}

// Source is one entry of an ordered source list. Markers start at 1 and
// follow first-use order, not score order.
type Source struct {
	Marker     int
	DocumentID string
	Title      string
	URL        string
	Date       string // ISO-8601 or empty
	County     string
	Topics     []string
}

// HealthReport aggregates component probe outcomes.
type HealthReport struct {
	Status string // "ok", "degraded", "error"
	Checks map[string]HealthProbe
}

// HealthProbe is one component probe outcome.
type HealthProbe struct {
	Status  string // "ok" or "error"
	Latency time.Duration
}

func hitFromResult(h *result.Hit) Hit {
	rec := h.Record()
	date := ""
	if d, ok := rec.Date(); ok {
		date = d.Format(time.DateOnly)
	}
	return Hit{
		Index:      h.Index(),
		Score:      h.Score(),
		DocumentID: rec.DocumentID(),
		PassageID:  rec.PassageID(),
		Title:      rec.Title(),
		URL:        rec.URL(),
		Date:       date,
		County:     rec.County(),
		Topics:     rec.Topics(),
		Text:       rec.Text(),
	}
}

// hitToRecord rebuilds the metadata-only passage view the citation builder
// needs. The embedding is not carried back: citing never re-scores.
func hitToRecord(h Hit) result.Hit {
	rec := passage.Reconstruct(
		h.DocumentID, h.PassageID, nil,
		h.Title, h.URL, passage.ParseDate(h.Date), h.County, h.Topics,
		h.Text,
	)
	return result.New(h.Index, h.Score, rec)
}

func sourceFromCitation(s citation.Source) Source {
	return Source{
		Marker:     s.Marker(),
		DocumentID: s.DocumentID(),
		Title:      s.Title(),
		URL:        s.URL(),
		Date:       s.Date(),
		County:     s.County(),
		Topics:     s.Topics(),
	}
}

func sourceToCitation(s Source) citation.Source {
	return citation.Reconstruct(
		s.Marker, s.DocumentID, s.Title, s.URL, s.Date, s.County, s.Topics,
	)
}

func reportFromHealth(r health.Report) HealthReport {
	checks := make(map[string]HealthProbe, len(r.Checks))
	for name, p := range r.Checks {
		checks[name] = HealthProbe{Status: string(p.Status), Latency: p.Latency}
	}
	return HealthReport{Status: string(r.Status), Checks: checks}
}
