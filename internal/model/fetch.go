package model

import "time"

// Fetch outcome constants.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Error kinds recorded for failed fetches.
const (
	ErrorKindToken   = "token"
	ErrorKindRequest = "request"
	ErrorKindMissing = "missing_property"
	ErrorKindOther   = "other"
)

// FetchRecord is one row of fetch history. Header contents are never
// stored; only their size.
type FetchRecord struct {
	ID          string    `json:"id" db:"id"`
	RawItemID   string    `json:"raw_item_id" db:"raw_item_id"`
	MessageID   string    `json:"message_id" db:"message_id"`
	BaseURL     string    `json:"base_url" db:"base_url"`
	Outcome     string    `json:"outcome" db:"outcome"`
	ErrorKind   string    `json:"error_kind,omitempty" db:"error_kind"`
	StatusCode  int       `json:"status_code,omitempty" db:"status_code"`
	HeaderBytes int       `json:"header_bytes" db:"header_bytes"`
	FetchedAt   time.Time `json:"fetched_at" db:"fetched_at"`
}
