package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document anchors placeholders to their source. The document body lives
// upstream; only identity and the drift token are registered here.
type Document struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalRef string    `gorm:"column:external_ref;index" json:"external_ref,omitempty"`
	Title       string    `gorm:"column:title" json:"title,omitempty"`
	Etag        string    `gorm:"column:etag;not null" json:"etag"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Document) TableName() string { return "document" }
