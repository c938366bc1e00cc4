package domain

import (
	"time"

	"github.com/google/uuid"
)

// Question's answer model is owned jointly by the placeholders bound to it:
// the first bind sets AnswerKind and the option rows, every later bind must
// agree exactly, and the last unbind clears both. Etag is regenerated on
// every successful bind/unbind and doubles as the optimistic-concurrency
// token for mutating calls.
type Question struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Prompt     string     `gorm:"column:prompt;type:text;not null" json:"prompt"`
	AnswerKind AnswerKind `gorm:"column:answer_kind;index" json:"answer_kind,omitempty"`
	Etag       string     `gorm:"column:etag;not null" json:"etag"`

	Options []AnswerOption `gorm:"foreignKey:QuestionID;references:ID" json:"options,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Question) TableName() string { return "question" }
