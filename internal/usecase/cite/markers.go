package cite

import (
	"fmt"
	"strings"
)

// Block is one paragraph of draft text attributed to a single source marker.
// Marker 0 means the block cites nothing.
type Block struct {
	Text   string
	Marker int
}

// InsertMarkers appends " [n]" to each block and joins the blocks with blank
// lines. A marker equal to the previous one is suppressed, so consecutive
// passages from the same document read as a single attributed span.
func InsertMarkers(blocks []Block) string {
	out := make([]string, 0, len(blocks))
	prev := 0
	for _, b := range blocks {
		txt := b.Text
		if b.Marker > 0 {
			if b.Marker != prev {
				txt += fmt.Sprintf(" [%d]", b.Marker)
			}
			prev = b.Marker
		}
		out = append(out, txt)
	}
	return strings.Join(out, "\n\n")
}
