// Package citation holds the source list value objects: numbered entries that
// ground generated text back to retrieved documents.
package citation

import (
	"fmt"
	"time"
)

// MaxTopics bounds the topic tags carried on a single source entry.
const MaxTopics = 32

// Source is one entry in an ordered source list (immutable value object).
// Markers start at 1 and follow first-appearance order, not score order.
type Source struct {
	marker     int
	documentID string
	title      string
	url        string
	date       string // ISO-8601 (yyyy-mm-dd) or empty
	county     string
	topics     []string
}

// New validates and creates a Source. Construct-or-fail: a malformed entry is
// the caller's problem to skip or abort on, never silently absorbed here.
func New(marker int, documentID, title, url, date, county string, topics []string) (Source, error) {
	if marker < 1 {
		return Source{}, fmt.Errorf("marker must be >= 1, got %d", marker)
	}
	if documentID == "" {
		return Source{}, fmt.Errorf("document ID is required")
	}
	if title == "" {
		return Source{}, fmt.Errorf("title is required")
	}
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return Source{}, fmt.Errorf("date %q is not ISO-8601 (yyyy-mm-dd)", date)
		}
	}
	if len(topics) > MaxTopics {
		return Source{}, fmt.Errorf("too many topics (max %d)", MaxTopics)
	}
	return Source{
		marker:     marker,
		documentID: documentID,
		title:      title,
		url:        url,
		date:       date,
		county:     county,
		topics:     cloneTopics(topics),
	}, nil
}

// Reconstruct creates a Source without validation (trusted internal paths).
func Reconstruct(marker int, documentID, title, url, date, county string, topics []string) Source {
	return Source{
		marker: marker, documentID: documentID, title: title,
		url: url, date: date, county: county, topics: topics,
	}
}

// WithMarker returns a copy renumbered to the given marker.
func (s Source) WithMarker(marker int) Source {
	s.marker = marker
	return s
}

// Marker returns the citation number referenced as [n] in text.
func (s Source) Marker() int { return s.marker }

// DocumentID returns the source document identifier (synthetic keys included).
func (s Source) DocumentID() string { return s.documentID }

// Title returns the display title.
func (s Source) Title() string { return s.title }

// URL returns the source URL (may be empty).
func (s Source) URL() string { return s.url }

// Date returns the ISO-8601 date (may be empty).
func (s Source) Date() string { return s.date }

// County returns the county tag (may be empty).
func (s Source) County() string { return s.county }

// Topics returns the topic tags.
func (s Source) Topics() []string { return s.topics }

func cloneTopics(t []string) []string {
	if t == nil {
		return nil
	}
	c := make([]string, len(t))
	copy(c, t)
	return c
}

// MarkerMap resolves a document key to its assigned marker within one request.
type MarkerMap map[string]int

// Marker returns the marker for a document key and whether one was assigned.
func (m MarkerMap) Marker(documentID string) (int, bool) {
	n, ok := m[documentID]
	return n, ok
}
