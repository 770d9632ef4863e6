// Package filter implements the retrieval metadata predicate: topic set,
// county set, and date window, AND-combined.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/grounder/internal/domain/passage"
)

// MaxTermsPerField is the maximum number of values per topic/county set.
const MaxTermsPerField = 32

// Filter is a validated, normalized retrieval predicate (immutable value
// object). Term normalization (trim, lowercase, drop empties) happens here
// once; Matches never normalizes the filter side again.
type Filter struct {
	topics   map[string]struct{}
	counties map[string]struct{}
	dateFrom time.Time
	dateTo   time.Time
	hasFrom  bool
	hasTo    bool
}

// New validates and creates a Filter. Dates are ISO-8601 (yyyy-mm-dd); a
// malformed bound is an error, not a silently dropped constraint. Empty
// slices and empty date strings mean "no constraint on that dimension".
func New(topics, counties []string, dateFrom, dateTo string) (Filter, error) {
	topicSet, err := normalizeTerms("topics", topics)
	if err != nil {
		return Filter{}, err
	}
	countySet, err := normalizeTerms("counties", counties)
	if err != nil {
		return Filter{}, err
	}

	f := Filter{topics: topicSet, counties: countySet}

	if dateFrom != "" {
		d, err := time.Parse(time.DateOnly, dateFrom)
		if err != nil {
			return Filter{}, fmt.Errorf("date_from %q is not ISO-8601 (yyyy-mm-dd)", dateFrom)
		}
		f.dateFrom, f.hasFrom = d, true
	}
	if dateTo != "" {
		d, err := time.Parse(time.DateOnly, dateTo)
		if err != nil {
			return Filter{}, fmt.Errorf("date_to %q is not ISO-8601 (yyyy-mm-dd)", dateTo)
		}
		f.dateTo, f.hasTo = d, true
	}
	if f.hasFrom && f.hasTo && f.dateTo.Before(f.dateFrom) {
		return Filter{}, fmt.Errorf("date_to %s precedes date_from %s", dateTo, dateFrom)
	}

	return f, nil
}

func normalizeTerms(field string, terms []string) (map[string]struct{}, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if len(terms) > MaxTermsPerField {
		return nil, fmt.Errorf("too many %s (max %d)", field, MaxTermsPerField)
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	if len(set) == 0 {
		return nil, nil
	}
	return set, nil
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return len(f.topics) == 0 && len(f.counties) == 0 && !f.hasFrom && !f.hasTo
}

// HasDateWindow reports whether at least one date bound is active.
func (f Filter) HasDateWindow() bool { return f.hasFrom || f.hasTo }

// Matches evaluates the predicate against a passage record. Pure; safe for
// concurrent use.
//
// Policy:
//   - topics: pass when the filter set is empty OR the record's topics
//     intersect it (case-insensitive);
//   - counties: pass when the filter set is empty OR the record's county is a
//     member (case-insensitive);
//   - date: pass when no bound is set; with any bound set, an undated record
//     FAILS (strict), otherwise date_from <= date <= date_to, each bound
//     inclusive and optional.
func (f Filter) Matches(rec *passage.Record) bool {
	return f.matchTopics(rec) && f.matchCounty(rec) && f.matchDate(rec)
}

func (f Filter) matchTopics(rec *passage.Record) bool {
	if len(f.topics) == 0 {
		return true
	}
	for _, t := range rec.Topics() {
		if _, ok := f.topics[strings.ToLower(t)]; ok {
			return true
		}
	}
	return false
}

func (f Filter) matchCounty(rec *passage.Record) bool {
	if len(f.counties) == 0 {
		return true
	}
	_, ok := f.counties[strings.ToLower(strings.TrimSpace(rec.County()))]
	return ok
}

func (f Filter) matchDate(rec *passage.Record) bool {
	if !f.hasFrom && !f.hasTo {
		return true
	}
	d, ok := rec.Date()
	if !ok {
		// Strict: undated records are excluded whenever any date bound is active.
		return false
	}
	if f.hasFrom && d.Before(f.dateFrom) {
		return false
	}
	if f.hasTo && d.After(f.dateTo) {
		return false
	}
	return true
}
