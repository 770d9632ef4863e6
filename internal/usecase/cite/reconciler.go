package cite

import (
	"regexp"
	"strconv"

	"github.com/kailas-cloud/grounder/internal/domain/citation"
	"github.com/kailas-cloud/grounder/internal/usecase/revise"
)

// markerRe matches bracketed citation markers like [3].
var markerRe = regexp.MustCompile(`\[(\d+)\]`)

// strayMarkerRe also eats the whitespace gluing a marker to its sentence.
var strayMarkerRe = regexp.MustCompile(`\s*\[\d+\]`)

// Reconcile aligns generated text with its grounding sources. The generator's
// own trailing source list is dropped, markers are renumbered sequentially in
// first-use order and the source list is reordered to match. A marker that
// references no known source stays as literal text rather than vanish; with
// no sources at all, every marker is stripped instead. Sources never
// referenced by the final text are dropped.
func Reconcile(text string, sources []citation.Source) (string, []citation.Source) {
	if len(sources) == 0 {
		return sanitizeUngrounded(text), nil
	}

	body := revise.StripSelfReportedSources(text)

	byMarker := make(map[int]citation.Source, len(sources))
	for _, s := range sources {
		byMarker[s.Marker()] = s
	}

	// First-use order over markers that resolve to a source.
	var order []int
	renumber := make(map[int]int)
	for _, m := range markerRe.FindAllStringSubmatch(body, -1) {
		old, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, known := byMarker[old]; !known {
			continue
		}
		if _, seen := renumber[old]; seen {
			continue
		}
		order = append(order, old)
		renumber[old] = len(order)
	}

	// Single-pass rewrite: swapped numbers like [2]...[1] cannot cascade.
	body = markerRe.ReplaceAllStringFunc(body, func(m string) string {
		old, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil {
			return m
		}
		next, ok := renumber[old]
		if !ok {
			return m
		}
		return "[" + strconv.Itoa(next) + "]"
	})

	rebuilt := make([]citation.Source, 0, len(order))
	for i, old := range order {
		rebuilt = append(rebuilt, byMarker[old].WithMarker(i+1))
	}
	return body, rebuilt
}

// sanitizeUngrounded removes the whole citation apparatus when nothing
// grounds it: every [n] marker plus any trailing self-reported source block.
func sanitizeUngrounded(text string) string {
	text = strayMarkerRe.ReplaceAllString(text, "")
	return revise.StripSelfReportedSources(text)
}
