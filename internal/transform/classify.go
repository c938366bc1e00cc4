package transform

import (
	"errors"
	"strings"

	"github.com/draftmint/clausebind-backend/internal/domain"
)

// Transform ids, one per classification rule, in precedence order.
const (
	TransformLiteralOrPlaceholder = "literal_or_placeholder"
	TransformLiteralList          = "literal_list"
	TransformLonePlaceholder      = "lone_placeholder"
	TransformInclusionToggle      = "inclusion_toggle"
	TransformNumeric              = "numeric"
	TransformShortText            = "short_text"
	TransformLongText             = "long_text"
)

// ErrUnrecognizedPattern is returned when no rule matches or the matched
// rule produces an empty option set. Never defaulted over.
var ErrUnrecognizedPattern = errors.New("unrecognized placeholder pattern")

// Result is the outcome of classifying one fragment. PlaceholderKey is set
// when the fragment contains exactly one bracket token; nested linkage
// matches a parent option against it once this fragment is bound.
type Result struct {
	TransformID    string            `json:"transform_id"`
	AnswerKind     domain.AnswerKind `json:"answer_kind"`
	Options        []Option          `json:"options,omitempty"`
	PlaceholderKey string            `json:"placeholder_key,omitempty"`
}

type fragment struct {
	raw      string
	norm     string
	segs     []Segment
	literals int
	phs      int
	ors      int
	orList   bool
}

// Rule is one precedence entry: a pure predicate plus a pure builder.
// Evaluate walks the list top-down and the first match wins; there is no
// scoring and no tie to break.
type Rule struct {
	ID          string
	Kind        domain.AnswerKind
	Description string
	match       func(fr *fragment) bool
	build       func(fr *fragment) (*Result, error)
}

var ruleList = []Rule{
	{
		ID:          TransformLiteralOrPlaceholder,
		Kind:        domain.AnswerKindEnumSingle,
		Description: "Literals and [TOKEN] placeholders joined by OR become a single-select option set.",
		match:       func(fr *fragment) bool { return fr.orList && fr.phs >= 1 && fr.literals >= 1 },
		build:       buildEnum(TransformLiteralOrPlaceholder),
	},
	{
		ID:          TransformLiteralList,
		Kind:        domain.AnswerKindEnumSingle,
		Description: "Two or more literals joined by OR become a single-select option set.",
		match:       func(fr *fragment) bool { return fr.orList && fr.phs == 0 && fr.literals >= 2 },
		build:       buildEnum(TransformLiteralList),
	},
	{
		ID:          TransformLonePlaceholder,
		Kind:        domain.AnswerKindShortString,
		Description: "A single [TOKEN] with no surrounding text answers as a short string.",
		match: func(fr *fragment) bool {
			return fr.phs == 1 && fr.literals == 0 && fr.ors == 0 && shortEnough(fr)
		},
		build: func(fr *fragment) (*Result, error) {
			return &Result{TransformID: TransformLonePlaceholder, AnswerKind: domain.AnswerKindShortString}, nil
		},
	},
	{
		ID:          TransformInclusionToggle,
		Kind:        domain.AnswerKindBoolean,
		Description: "A single bracket with an inclusion cue toggles the surrounding text on or off.",
		match: func(fr *fragment) bool {
			return fr.phs == 1 && fr.ors == 0 && fr.literals >= 1 && keyHasBooleanCue(fr)
		},
		build: func(fr *fragment) (*Result, error) {
			return &Result{TransformID: TransformInclusionToggle, AnswerKind: domain.AnswerKindBoolean}, nil
		},
	},
	{
		ID:          TransformNumeric,
		Kind:        domain.AnswerKindNumber,
		Description: "A numeric token, or digits with unit/currency context, answers as a number.",
		match: func(fr *fragment) bool {
			return fr.ors == 0 && (hasNumericKey(fr) || literalHasUnitDigits(fr))
		},
		build: func(fr *fragment) (*Result, error) {
			return &Result{TransformID: TransformNumeric, AnswerKind: domain.AnswerKindNumber}, nil
		},
	},
	{
		ID:          TransformShortText,
		Kind:        domain.AnswerKindShortString,
		Description: "Unstructured text under the length threshold answers as a short string.",
		match:       func(fr *fragment) bool { return fr.ors == 0 && shortEnough(fr) },
		build: func(fr *fragment) (*Result, error) {
			return &Result{TransformID: TransformShortText, AnswerKind: domain.AnswerKindShortString}, nil
		},
	},
	{
		ID:          TransformLongText,
		Kind:        domain.AnswerKindLongText,
		Description: "Unstructured text over the length threshold or spanning lines answers as long text.",
		match:       func(fr *fragment) bool { return fr.ors == 0 },
		build: func(fr *fragment) (*Result, error) {
			return &Result{TransformID: TransformLongText, AnswerKind: domain.AnswerKindLongText}, nil
		},
	},
}

func buildEnum(id string) func(fr *fragment) (*Result, error) {
	return func(fr *fragment) (*Result, error) {
		opts := canonicalOptions(fr.segs)
		if len(opts) == 0 {
			return nil, ErrUnrecognizedPattern
		}
		res := &Result{TransformID: id, AnswerKind: domain.AnswerKindEnumSingle, Options: opts}
		if fr.phs == 1 {
			res.PlaceholderKey = soleKey(fr.segs)
		}
		return res, nil
	}
}

// Evaluate classifies a raw fragment. Side-effect free: identical raw text
// always yields the identical transform id, answer kind and option list.
func Evaluate(raw string) (*Result, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrUnrecognizedPattern
	}
	segs := SegmentFragment(trimmed)
	fr := &fragment{raw: trimmed, norm: normalizeForLength(trimmed), segs: segs}
	for _, s := range segs {
		switch s.Kind {
		case SegmentLiteral:
			fr.literals++
		case SegmentPlaceholder:
			fr.phs++
		case SegmentOr:
			fr.ors++
		}
	}
	fr.orList = isOrList(segs)

	for _, rule := range ruleList {
		if !rule.match(fr) {
			continue
		}
		res, err := rule.build(fr)
		if err != nil {
			return nil, err
		}
		if res.PlaceholderKey == "" && fr.phs == 1 {
			res.PlaceholderKey = soleKey(segs)
		}
		return res, nil
	}
	return nil, ErrUnrecognizedPattern
}

// Catalog returns the rule list in precedence order for the read-only
// transforms endpoint.
func Catalog() []Rule {
	out := make([]Rule, len(ruleList))
	copy(out, ruleList)
	return out
}

// isOrList reports whether segments alternate value, or, value, ... with a
// value at both ends and at least one operator.
func isOrList(segs []Segment) bool {
	if len(segs) < 3 || len(segs)%2 == 0 {
		return false
	}
	for i, s := range segs {
		if i%2 == 1 {
			if s.Kind != SegmentOr {
				return false
			}
		} else if s.Kind == SegmentOr {
			return false
		}
	}
	return true
}

// Length is measured on whitespace-collapsed text; line breaks are checked
// on the raw fragment since collapsing erases them.
func shortEnough(fr *fragment) bool {
	return len(fr.norm) < rules.ShortStringMaxLen && !strings.ContainsAny(fr.raw, "\n\r")
}

func soleKey(segs []Segment) string {
	for _, s := range segs {
		if s.Kind == SegmentPlaceholder {
			return s.Key
		}
	}
	return ""
}

func keyWords(key string) []string {
	return strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func keyHasBooleanCue(fr *fragment) bool {
	for _, w := range keyWords(soleKey(fr.segs)) {
		if _, ok := booleanCueSet[w]; ok {
			return true
		}
	}
	return false
}

func hasNumericKey(fr *fragment) bool {
	for _, s := range fr.segs {
		if s.Kind != SegmentPlaceholder {
			continue
		}
		for _, w := range keyWords(s.Key) {
			if _, ok := numericKeySet[w]; ok {
				return true
			}
		}
	}
	return false
}

// literalHasUnitDigits reports whether some literal carries digits in a
// unit or currency context ("30 days", "50%", "$100"). Bare digits with no
// unit token stay free text.
func literalHasUnitDigits(fr *fragment) bool {
	for _, s := range fr.segs {
		if s.Kind != SegmentLiteral {
			continue
		}
		hasDigits := false
		hasUnit := false
		for _, w := range strings.Fields(strings.ToLower(s.Text)) {
			for _, r := range w {
				if r >= '0' && r <= '9' {
					hasDigits = true
					break
				}
			}
			token := strings.TrimFunc(w, func(r rune) bool {
				return r >= '0' && r <= '9' || r == '.' || r == ','
			})
			if token == "" {
				continue
			}
			if _, ok := unitTokenSet[token]; ok {
				hasUnit = true
			}
		}
		if hasDigits && hasUnit {
			return true
		}
	}
	return false
}
