// Package revise cleans generated draft text before citation reconciliation.
// Generators produce typography glitches: non-breaking spaces, numbers broken
// across lines, soft-wrapped paragraphs, mangled URLs. Normalize settles them
// so the downstream marker regexes see predictable spacing.
package revise

import (
	"regexp"
	"strings"
)

// maxPasses bounds the iterative rewrites. Each pass only shortens or keeps
// the text, so a small fixed count settles every cascade we care about.
const maxPasses = 3

var (
	dashReplacer = strings.NewReplacer("–", "-", "—", "-")

	// NBSP, thin/figure/narrow spaces, ideographic space.
	unicodeSpaceRe = regexp.MustCompile(`[\x{00A0}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}]`)
	zeroWidthRe    = regexp.MustCompile(`[\x{200B}-\x{200D}\x{2060}\x{FEFF}]`)

	currencyGapRe = regexp.MustCompile(`\$\s+(\d)`)
	thousandsRe   = regexp.MustCompile(`(\d),\s+(\d)`)
	numRangeRe    = regexp.MustCompile(`(\d)\s*-\s*(\d)`)
	unitSuffixRe  = regexp.MustCompile(`(?i)(\$[ \t]*)?(\d[\d,]*(?:\.\d+)?)[ \t]*([kmb])\b`)
	unitGlueRe    = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?[kmb])(to\b)`)
	yearCommaRe   = regexp.MustCompile(`(\d),(\d{4})\b`)

	hyphenBreakRe = regexp.MustCompile(`(\w)-\n(\w)`)
	wordBreakRe   = regexp.MustCompile(`(\w)\n(\w)`)
	// Single newline inside a paragraph. Blank lines and list or heading
	// starters on the next line keep their break.
	softWrapRe = regexp.MustCompile(`([^\n])\n([^\n#*\-])`)

	spaceBeforePunctRe = regexp.MustCompile(`[ \t]+([.,;:%])`)
	multiSpaceRe       = regexp.MustCompile(`[ \t]{2,}`)

	urlSchemeGapRe = regexp.MustCompile(`(?i)\b(https?)\s*:\s*/\s*/`)
	urlLeadGapRe   = regexp.MustCompile(`(?i)(https?://)\s+`)
	urlDotGapRe    = regexp.MustCompile(`(?i)(https?://[^\n]*?)\s*\.\s*`)
	urlSlashGapRe  = regexp.MustCompile(`(?i)(https?://[^\n]*?)\s*/\s*`)
	urlQueryGapRe  = regexp.MustCompile(`(?i)(https?://[^\n]*?)\s*([?#&=])\s*`)

	// A generator-authored trailing source block: a markdown heading, or a
	// bare "Sources:"/"References:" label, through end of text.
	selfSourcesRe = regexp.MustCompile(
		`(?is)\n+[ \t]*(?:#{1,6}[ \t]*(?:sources?|references?)\b[ \t]*:?|(?:sources?|references?)\b[ \t]*:).*$`)
)

// Normalize cleans one generated draft: Unicode spacing, numbers and ranges
// broken by the generator, hyphenation and soft wraps, spaced-out URLs.
func Normalize(text string) string {
	s := strings.ReplaceAll(text, "\r\n", "\n")

	s = unicodeSpaceRe.ReplaceAllString(s, " ")
	s = zeroWidthRe.ReplaceAllString(s, "")
	s = dashReplacer.Replace(s)

	// "$ 250,000" -> "$250,000"
	s = currencyGapRe.ReplaceAllString(s, "$$${1}")
	// "250,\n000" / "6, 000" -> "250,000" / "6,000"
	s = replaceStable(thousandsRe, "${1},${2}", s)
	// "6 - 10" -> "6-10"
	s = replaceStable(numRangeRe, "${1}-${2}", s)
	s = tightenUnits(s)
	// "October 15,2025" -> "October 15, 2025"
	s = yearCommaRe.ReplaceAllString(s, "${1}, ${2}")
	// "10kto" -> "10k to"
	s = unitGlueRe.ReplaceAllString(s, "${1} ${2}")

	// "micro-\ngrants" -> "microgrants", then remaining soft wraps to spaces.
	s = replaceStable(hyphenBreakRe, "${1}${2}", s)
	s = replaceStable(wordBreakRe, "${1} ${2}", s)
	s = replaceStable(softWrapRe, "${1} ${2}", s)

	s = spaceBeforePunctRe.ReplaceAllString(s, "${1}")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = fixURLLines(s)

	return strings.TrimSpace(s)
}

// StripSelfReportedSources drops a trailing source list the generator wrote on
// its own. The reconciler rebuilds the list from grounded markers instead, so
// a model-authored one would only drift from the real numbering.
func StripSelfReportedSources(text string) string {
	return selfSourcesRe.ReplaceAllString(text, "")
}

// replaceStable reruns a rewrite until it settles. The capture-group rewrites
// consume their boundary characters, so overlapping runs like "a\nb\nc" need
// a second pass.
func replaceStable(re *regexp.Regexp, repl, s string) string {
	for i := 0; i < maxPasses; i++ {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// tightenUnits glues k/m/b magnitude suffixes to their number and lowercases
// them: "$ 250 K" -> "$250k", "5-10 k" -> "5-10k".
func tightenUnits(s string) string {
	return unitSuffixRe.ReplaceAllStringFunc(s, func(m string) string {
		p := unitSuffixRe.FindStringSubmatch(m)
		if p == nil {
			return m
		}
		out := p[2] + strings.ToLower(p[3])
		if p[1] != "" {
			return "$" + out
		}
		return out
	})
}

// fixURLLines collapses spaces that generators sprinkle into URLs: around the
// scheme, after the protocol, and around dots, slashes and query separators.
// Each pass repairs the next gap after the protocol, so cascades take a few.
func fixURLLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "http") {
			continue
		}
		line = urlSchemeGapRe.ReplaceAllString(line, "${1}://")
		line = urlLeadGapRe.ReplaceAllString(line, "${1}")
		for pass := 0; pass < maxPasses; pass++ {
			line = urlDotGapRe.ReplaceAllString(line, "${1}.")
			line = urlSlashGapRe.ReplaceAllString(line, "${1}/")
			line = urlQueryGapRe.ReplaceAllString(line, "${1}${2}")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
