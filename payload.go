package grounder

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/kailas-cloud/grounder/internal/domain/batch"
	"github.com/kailas-cloud/grounder/internal/domain/citation"
)

// SourcePayload is a loosely shaped citation item from legacy callers: alias
// key spellings, empty strings for absent fields, topics as a string or a
// list. Normalization into a canonical Source happens here, at the boundary,
// never inside the domain types.
type SourcePayload struct {
	Marker     int       `json:"marker"`
	N          int       `json:"n"` // legacy spelling of marker
	DocumentID string    `json:"document_id"`
	DocID      string    `json:"doc_id"` // legacy spelling
	Title      string    `json:"title"`
	Label      string    `json:"label"` // legacy spelling of title
	URL        string    `json:"url"`
	Date       string    `json:"date"`
	County     string    `json:"county"`
	Topics     TopicList `json:"topics"`
}

// TopicList accepts both a single string and a list of strings in JSON.
type TopicList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TopicList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*t = nil
		} else {
			*t = TopicList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("topics must be a string or a list of strings")
	}
	*t = TopicList(many)
	return nil
}

// PayloadResult is the per-item outcome of payload normalization.
type PayloadResult struct {
	Index int    // position in the input batch
	Key   string // resolved citation key, empty on failure
	Err   error  // nil on success
}

// OK reports whether the item normalized cleanly.
func (r PayloadResult) OK() bool { return r.Err == nil }

var payloadDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseSourcePayloads normalizes a batch of legacy citation payloads into
// canonical sources. Each item is construct-or-fail: alias keys are resolved,
// a missing title falls back to "Source", a missing document ID gets a
// synthetic key, a date that is not ISO-8601 shaped is dropped rather than
// rejected. One malformed item never fails the batch: the report records
// every failure by index so the caller decides skip versus abort.
func ParseSourcePayloads(items []SourcePayload) ([]Source, []PayloadResult) {
	sources := make([]Source, 0, len(items))
	report := make([]PayloadResult, 0, len(items))

	for i, item := range items {
		src, key, err := normalizePayload(item)
		if err != nil {
			r := batch.NewError(i, err)
			report = append(report, PayloadResult{Index: r.Index(), Err: r.Err()})
			continue
		}
		r := batch.NewOK(i, key)
		report = append(report, PayloadResult{Index: r.Index(), Key: r.Key()})
		sources = append(sources, src)
	}
	return sources, report
}

func normalizePayload(item SourcePayload) (Source, string, error) {
	marker := item.Marker
	if marker == 0 {
		marker = item.N
	}

	title := item.Title
	if title == "" {
		title = item.Label
	}
	if title == "" {
		title = "Source"
	}

	key := item.DocumentID
	if key == "" {
		key = item.DocID
	}
	if key == "" {
		key = citation.SyntheticKey(item.URL, title, marker)
	}

	date := item.Date
	if date != "" && !payloadDateRe.MatchString(date) {
		date = ""
	}

	src, err := citation.New(marker, key, title, item.URL, date, item.County, item.Topics)
	if err != nil {
		return Source{}, "", err
	}
	return sourceFromCitation(src), key, nil
}
