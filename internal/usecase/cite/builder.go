// Package cite builds and reconciles the numbered source apparatus for
// generated drafts: one marker per distinct document, assigned in first-use
// order, inserted into draft blocks and renumbered after generation so the
// text and the source list stay in lockstep.
package cite

import (
	"time"

	"github.com/kailas-cloud/grounder/internal/domain/citation"
	"github.com/kailas-cloud/grounder/internal/domain/passage"
	"github.com/kailas-cloud/grounder/internal/domain/search/result"
)

// DocumentKey resolves the citation identity of a retrieved record: the
// document ID when present, otherwise a deterministic synthetic key so
// passages from the same unidentified document still collapse into one entry.
func DocumentKey(rec *passage.Record) string {
	if id := rec.DocumentID(); id != "" {
		return id
	}
	return citation.SyntheticKey(rec.URL(), rec.Title(), 0)
}

// BuildSources walks hits in rank order and assigns one marker per distinct
// document. The first encounter claims the next number starting at 1; repeat
// encounters resolve to the existing marker. The returned list preserves
// assignment order, which is what the final source list prints in.
func BuildSources(hits []result.Hit) (citation.MarkerMap, []citation.Source) {
	markers := make(citation.MarkerMap, len(hits))
	sources := make([]citation.Source, 0, len(hits))

	for i := range hits {
		rec := hits[i].Record()
		key := DocumentKey(rec)
		if _, ok := markers[key]; ok {
			continue
		}
		n := len(sources) + 1
		markers[key] = n
		sources = append(sources, sourceFromRecord(n, key, rec))
	}
	return markers, sources
}

func sourceFromRecord(marker int, key string, rec *passage.Record) citation.Source {
	title := rec.Title()
	if title == "" {
		title = "Source"
	}
	date := ""
	if d, ok := rec.Date(); ok {
		date = d.Format(time.DateOnly)
	}
	return citation.Reconstruct(marker, key, title, rec.URL(), date, rec.County(), rec.Topics())
}
