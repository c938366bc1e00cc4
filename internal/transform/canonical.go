package transform

import (
	"strings"
	"unicode"
)

// Option is one canonical answer choice. Value is the stable UPPER_SNAKE
// identifier; Label keeps the source literal verbatim. For a nested
// placeholder option Value and Label are the raw bracket key and
// PlaceholderKey is set.
type Option struct {
	Value          string `json:"value"`
	Label          string `json:"label"`
	PlaceholderKey string `json:"placeholder_key,omitempty"`
}

// CanonicalValue derives the stable identifier for a literal: lowercase,
// strip everything but letters/digits/space/hyphen, collapse whitespace,
// drop leading articles when other words remain, UPPER_SNAKE the rest.
func CanonicalValue(literal string) string {
	lowered := strings.ToLower(literal)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune(' ')
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	words := strings.Fields(b.String())
	for len(words) > 1 {
		if _, isArticle := articleSet[words[0]]; !isArticle {
			break
		}
		words = words[1:]
	}
	return strings.ToUpper(strings.Join(words, "_"))
}

// canonicalOptions turns the value segments of an or-list into the option
// set: first-seen order, de-duplicated by value with the first occurrence
// winning. Literals whose canonical form strips to nothing are dropped.
func canonicalOptions(segs []Segment) []Option {
	var opts []Option
	seen := make(map[string]struct{})
	for _, s := range segs {
		var opt Option
		switch s.Kind {
		case SegmentLiteral:
			value := CanonicalValue(s.Text)
			if value == "" {
				continue
			}
			opt = Option{Value: value, Label: s.Text}
		case SegmentPlaceholder:
			opt = Option{Value: s.Key, Label: s.Key, PlaceholderKey: s.Key}
		default:
			continue
		}
		if _, dup := seen[opt.Value]; dup {
			continue
		}
		seen[opt.Value] = struct{}{}
		opts = append(opts, opt)
	}
	return opts
}

// normalizeForLength collapses all whitespace for the short/long text
// threshold without touching the text used for labels.
func normalizeForLength(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
