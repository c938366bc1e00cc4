package domain

// AnswerKind is the typed answer model a question exposes. A question with
// no bound placeholders carries the empty kind.
type AnswerKind string

const (
	AnswerKindNone        AnswerKind = ""
	AnswerKindShortString AnswerKind = "short_string"
	AnswerKindLongText    AnswerKind = "long_text"
	AnswerKindBoolean     AnswerKind = "boolean"
	AnswerKindNumber      AnswerKind = "number"
	AnswerKindEnumSingle  AnswerKind = "enum_single"
)

func (k AnswerKind) Valid() bool {
	switch k {
	case AnswerKindShortString, AnswerKindLongText, AnswerKindBoolean, AnswerKindNumber, AnswerKindEnumSingle:
		return true
	}
	return false
}
