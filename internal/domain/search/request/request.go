// Package request holds the validated retrieval query value object.
package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/grounder/internal/domain"
	"github.com/kailas-cloud/grounder/internal/domain/search/filter"
)

// Retrieval parameter limits.
const (
	// MaxQueryLength is the maximum allowed query text length.
	MaxQueryLength = 4096
	DefaultK       = 6
	MaxK           = 50
)

// Request is a validated retrieval query.
type Request struct {
	query string
	k     int
	filt  *filter.Filter
}

// New validates and normalizes retrieval parameters. k defaults to DefaultK
// and is capped at MaxK. A filter that constrains nothing is normalized to
// absent, so strict-empty handling only ever sees real constraints.
func New(query string, k int, filt *filter.Filter) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, domain.ErrEmptyQuery
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		k = MaxK
	}
	if filt != nil && filt.IsEmpty() {
		filt = nil
	}

	return Request{query: query, k: k, filt: filt}, nil
}

// Query returns the query text.
func (r *Request) Query() string { return r.query }

// K returns the number of passages to retrieve.
func (r *Request) K() int { return r.k }

// Filter returns the metadata predicate, or nil when none was supplied.
func (r *Request) Filter() *filter.Filter { return r.filt }

// HasFilter reports whether a constraining filter was supplied.
func (r *Request) HasFilter() bool { return r.filt != nil }
