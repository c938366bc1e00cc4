package transform

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
)

// Probe is the full suggest-time input, including the raw text. The hash is
// a pure function of its fields; it is the continuity token proving that
// what the caller binds is what was analyzed.
type Probe struct {
	DocumentID uuid.UUID `json:"document_id"`
	ClausePath string    `json:"clause_path"`
	SpanStart  int       `json:"span_start"`
	SpanEnd    int       `json:"span_end"`
	RawText    string    `json:"raw_text"`
	DocEtag    string    `json:"doc_etag,omitempty"`
}

// ProbeReceipt is echoed unmodified from suggest into bind. It carries the
// probe context minus the raw text; bind re-supplies the text and the hash
// ties the two together.
type ProbeReceipt struct {
	DocumentID     uuid.UUID `json:"document_id"`
	ClausePath     string    `json:"clause_path"`
	SpanStart      int       `json:"span_start"`
	SpanEnd        int       `json:"span_end"`
	PlaceholderKey string    `json:"placeholder_key,omitempty"`
	DocEtag        string    `json:"doc_etag,omitempty"`
	ProbeHash      string    `json:"probe_hash"`
}

// Hash computes the sha256 probe hash over length-prefixed fields, so no
// concatenation of adjacent fields can collide.
func (p Probe) Hash() string {
	h := sha256.New()
	writeField := func(field string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	writeField("probe.v1")
	writeField(p.DocumentID.String())
	writeField(p.ClausePath)
	writeField(strconv.Itoa(p.SpanStart))
	writeField(strconv.Itoa(p.SpanEnd))
	writeField(p.RawText)
	writeField(p.DocEtag)
	return hex.EncodeToString(h.Sum(nil))
}

// Receipt builds the immutable receipt for a classified probe.
func (p Probe) Receipt(placeholderKey string) ProbeReceipt {
	return ProbeReceipt{
		DocumentID:     p.DocumentID,
		ClausePath:     p.ClausePath,
		SpanStart:      p.SpanStart,
		SpanEnd:        p.SpanEnd,
		PlaceholderKey: placeholderKey,
		DocEtag:        p.DocEtag,
		ProbeHash:      p.Hash(),
	}
}

// VerifyReceipt recomputes the hash from the receipt's own context fields
// plus the bind-time raw text and compares it to the hash the receipt
// carries. False means context drift or a rewritten receipt.
func VerifyReceipt(r ProbeReceipt, rawText string) bool {
	p := Probe{
		DocumentID: r.DocumentID,
		ClausePath: r.ClausePath,
		SpanStart:  r.SpanStart,
		SpanEnd:    r.SpanEnd,
		RawText:    rawText,
		DocEtag:    r.DocEtag,
	}
	return p.Hash() == r.ProbeHash
}
