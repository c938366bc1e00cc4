package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnswerOption rows exist only while the owning question's answer kind is
// enum_single. Value is the canonical UPPER_SNAKE identifier and is immutable
// once written; Label keeps the source literal verbatim. PlaceholderKey is
// set only for nested-placeholder options, and PlaceholderID is back-filled
// with the child placeholder's id the moment the child binds. It is a weak
// reference, not an ownership edge.
type AnswerOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index:idx_answer_option_question;uniqueIndex:uq_answer_option_value,priority:1" json:"question_id"`

	Value          string     `gorm:"column:value;not null;uniqueIndex:uq_answer_option_value,priority:2" json:"value"`
	Label          string     `gorm:"column:label;not null" json:"label"`
	PlaceholderKey *string    `gorm:"column:placeholder_key;index" json:"placeholder_key,omitempty"`
	PlaceholderID  *uuid.UUID `gorm:"type:uuid;column:placeholder_id;index" json:"placeholder_id,omitempty"`
	Position       int        `gorm:"column:position;not null" json:"position"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AnswerOption) TableName() string { return "answer_option" }
