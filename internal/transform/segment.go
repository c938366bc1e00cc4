package transform

import (
	"regexp"
	"strings"
)

type SegmentKind string

const (
	SegmentLiteral     SegmentKind = "literal"
	SegmentPlaceholder SegmentKind = "placeholder"
	SegmentOr          SegmentKind = "or"
)

// Segment is one token of a split fragment. Literal segments keep the source
// text verbatim (outer whitespace trimmed); placeholder segments carry the
// bracket key with its original case.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	Key  string      `json:"key,omitempty"`
}

// orWordRe matches the single-choice operators outside brackets. AND/OR is
// normalized to OR: the answer model is single-select either way.
var orWordRe = regexp.MustCompile(`(?i)\band/or\b|\bor\b`)

// orSepRe additionally treats commas as separators; it only applies when the
// fragment carries at least one OR word, so list commas split but ordinary
// punctuation inside a lone literal does not.
var orSepRe = regexp.MustCompile(`(?i),\s*(?:and/or|or)\b|\band/or\b|\bor\b|,`)

// SegmentFragment splits raw text into placeholder, literal and or-operator
// segments. Pure function of the string; identical input yields the
// identical segment list.
func SegmentFragment(raw string) []Segment {
	chunks := splitBrackets(raw)

	hasOr := false
	for _, ch := range chunks {
		if ch.key == "" && orWordRe.MatchString(ch.text) {
			hasOr = true
			break
		}
	}
	sepRe := orWordRe
	if hasOr {
		sepRe = orSepRe
	}

	var segs []Segment
	for _, ch := range chunks {
		if ch.key != "" {
			segs = append(segs, Segment{Kind: SegmentPlaceholder, Key: ch.key})
			continue
		}
		segs = appendTextSegments(segs, ch.text, sepRe)
	}
	return segs
}

type rawChunk struct {
	text string // literal run, bracket-free
	key  string // set instead of text for a [TOKEN]
}

// splitBrackets cuts the fragment at [TOKEN] boundaries. An unclosed or
// empty bracket is kept as literal text rather than rejected.
func splitBrackets(raw string) []rawChunk {
	var chunks []rawChunk
	rest := raw
	for {
		open := strings.Index(rest, "[")
		if open < 0 {
			break
		}
		close := strings.Index(rest[open:], "]")
		if close < 0 {
			break
		}
		close += open
		key := strings.TrimSpace(rest[open+1 : close])
		if key == "" {
			if before := rest[:close+1]; before != "" {
				chunks = append(chunks, rawChunk{text: before})
			}
			rest = rest[close+1:]
			continue
		}
		if before := rest[:open]; before != "" {
			chunks = append(chunks, rawChunk{text: before})
		}
		chunks = append(chunks, rawChunk{key: key})
		rest = rest[close+1:]
	}
	if rest != "" {
		chunks = append(chunks, rawChunk{text: rest})
	}
	return chunks
}

// appendTextSegments splits one literal run on or-separators, emitting one
// or-operator segment per separator and trimmed literal segments for the
// pieces in between. An operator butted against a bracket leaves an empty
// piece, which emits nothing; a comma directly followed by "or" is a single
// separator by the regex. Anything else that produces adjacent operators is
// malformed and left for the classifier to reject.
func appendTextSegments(segs []Segment, text string, sepRe *regexp.Regexp) []Segment {
	locs := sepRe.FindAllStringIndex(text, -1)
	prev := 0
	for _, loc := range locs {
		piece := strings.TrimSpace(text[prev:loc[0]])
		if piece != "" {
			segs = append(segs, Segment{Kind: SegmentLiteral, Text: piece})
		}
		segs = append(segs, Segment{Kind: SegmentOr})
		prev = loc[1]
	}
	if piece := strings.TrimSpace(text[prev:]); piece != "" {
		segs = append(segs, Segment{Kind: SegmentLiteral, Text: piece})
	}
	return segs
}
