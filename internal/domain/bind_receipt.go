package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BindReceiptRecord is the idempotency ledger. One row per successful bind,
// written in the same transaction as the bind itself. A retry with the same
// key and the same request hash replays Response; the same key with a
// different hash is a contract error.
type BindReceiptRecord struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Key         string         `gorm:"column:key;not null;uniqueIndex:uq_bind_receipt_key" json:"key"`
	QuestionID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"question_id"`
	RequestHash string         `gorm:"column:request_hash;not null" json:"request_hash"`
	Response    datatypes.JSON `gorm:"column:response;type:jsonb;not null" json:"response"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (BindReceiptRecord) TableName() string { return "bind_receipt" }
