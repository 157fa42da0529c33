package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMinLength is the shortest clause, in runes, Segment keeps.
const DefaultMinLength = 20

// Options tunes Segment.
type Options struct {
	// MinLength drops parts shorter than this many runes. Zero means DefaultMinLength.
	MinLength int
	// MaxClauses keeps only the first N clauses. Zero means no cap.
	MaxClauses int
}

var (
	// markerLine matches "1.", "2.3.", "-", "*" or "•" at the start of a line,
	// with or without a following space.
	markerLine = regexp.MustCompile(`^[ \t]*(?:\d+(?:\.\d+)*\.|[-*•])[ \t]*\S`)
	// sentenceBoundary matches terminal punctuation, whitespace, then an uppercase letter.
	sentenceBoundary = regexp.MustCompile(`[.;!?]\s+\p{Lu}`)
)

type span struct {
	start, end int
}

type splitter func(text string) []span

// Segment splits text into ordered, deduplicated clauses.
//
// Enumerated/bulleted lines and blank-line paragraph breaks are tried first;
// sentence boundaries are the fallback. The first rule yielding at least two
// parts long enough to keep wins. If neither does, the rule keeping the most
// parts is used, the earlier rule on a tie.
func Segment(text string, opts Options) []Clause {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	if strings.TrimSpace(text) == "" {
		return []Clause{}
	}

	var best []span
	bestKept := -1
	for _, split := range []splitter{splitOnMarkers, splitOnSentences} {
		spans := split(text)
		kept := countKept(text, spans, opts.MinLength)
		if kept >= 2 {
			best = spans
			break
		}
		if kept > bestKept {
			best, bestKept = spans, kept
		}
	}

	return buildClauses(text, best, opts)
}

// splitOnMarkers starts a new part at every marker line and after every
// blank line. Other lines continue the current part.
func splitOnMarkers(text string) []span {
	var spans []span
	cur := span{start: -1}
	pendingBreak := false

	offset := 0
	for offset <= len(text) {
		lineEnd := strings.IndexByte(text[offset:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += offset
		}
		line := text[offset:lineEnd]

		if strings.TrimSpace(line) == "" {
			pendingBreak = true
		} else {
			if cur.start >= 0 && (pendingBreak || markerLine.MatchString(line)) {
				spans = append(spans, cur)
				cur = span{start: -1}
			}
			if cur.start < 0 {
				cur.start = offset
			}
			cur.end = lineEnd
			pendingBreak = false
		}

		offset = lineEnd + 1
	}
	if cur.start >= 0 {
		spans = append(spans, cur)
	}
	return spans
}

func splitOnSentences(text string) []span {
	var spans []span
	start := 0
	for _, m := range sentenceBoundary.FindAllStringIndex(text, -1) {
		spans = append(spans, span{start: start, end: m[0] + 1})
		_, size := utf8.DecodeLastRuneInString(text[:m[1]])
		start = m[1] - size
	}
	return append(spans, span{start: start, end: len(text)})
}

func trimSpan(text string, s span) (string, int) {
	part := text[s.start:s.end]
	left := len(part) - len(strings.TrimLeftFunc(part, unicode.IsSpace))
	return strings.TrimSpace(part), s.start + left
}

func countKept(text string, spans []span, minLength int) int {
	kept := 0
	for _, s := range spans {
		trimmed, _ := trimSpan(text, s)
		if utf8.RuneCountInString(trimmed) >= minLength {
			kept++
		}
	}
	return kept
}

func buildClauses(text string, spans []span, opts Options) []Clause {
	clauses := []Clause{}
	seen := make(map[string]struct{}, len(spans))
	for _, s := range spans {
		trimmed, start := trimSpan(text, s)
		if utf8.RuneCountInString(trimmed) < opts.MinLength {
			continue
		}
		key := normalizeClause(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		clauses = append(clauses, Clause{
			Index: len(clauses),
			Text:  trimmed,
			Start: start,
			End:   start + len(trimmed),
		})
		if opts.MaxClauses > 0 && len(clauses) == opts.MaxClauses {
			break
		}
	}
	return clauses
}

// normalizeClause lower-cases text and collapses whitespace runs.
func normalizeClause(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
