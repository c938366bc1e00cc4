package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Placeholder is created only by a successful bind and always belongs to
// exactly one question and one document. SpanStart/SpanEnd is a half-open
// character range into the document's clause text. PlaceholderKey is the
// bracket token when the bound fragment was a single [TOKEN]; nested
// linkage matches on it.
type Placeholder struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index:idx_placeholder_document" json:"document_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index:idx_placeholder_question" json:"question_id"`

	ClausePath     string         `gorm:"column:clause_path;not null" json:"clause_path"`
	SpanStart      int            `gorm:"column:span_start;not null" json:"span_start"`
	SpanEnd        int            `gorm:"column:span_end;not null" json:"span_end"`
	TransformID    string         `gorm:"column:transform_id;not null" json:"transform_id"`
	PlaceholderKey string         `gorm:"column:placeholder_key;index" json:"placeholder_key,omitempty"`
	ProbeHash      string         `gorm:"column:probe_hash;not null" json:"probe_hash"`
	Payload        datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Placeholder) TableName() string { return "placeholder" }
