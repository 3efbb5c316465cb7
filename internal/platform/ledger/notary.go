// Package ledger anchors report fingerprints on the Hedera Consensus Service.
// A fingerprint submitted to the topic becomes independently verifiable as
// having existed at submission time.
package ledger

import (
	"context"
	"time"
)

// Receipt is the tagged outcome of a notarization attempt. Skipped means no
// ledger topic is configured system-wide; it is a success path, not a failure.
// A failed submission is reported as an error, never as an empty receipt, so
// callers cannot confuse "not configured" with "failed".
type Receipt struct {
	Skipped       bool
	TransactionID string
}

// Notary submits a report fingerprint to an append-only ledger. The call is
// synchronous: it returns only once the ledger has assigned a transaction id
// or the submission is confirmed skipped.
type Notary interface {
	Notarize(ctx context.Context, patientID, reportHash string, ts time.Time) (Receipt, error)
}

// topicMessage is the JSON payload anchored on the ledger.
type topicMessage struct {
	PatientID  string `json:"patientId"`
	ReportHash string `json:"reportHash"`
	Timestamp  string `json:"timestamp"`
}
