// Package reports implements the report ingestion and verification pipeline:
// fingerprint the uploaded document, anchor the fingerprint on the ledger,
// extract structured findings, persist the record, and serve per-patient
// history and the derived cross-document summary.
package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/medledger/medledger/internal/platform/extract"
)

// ReportRecord maps to the patient_report table. A record is immutable once
// created: correcting an error means uploading a new report. HederaTxID is
// null only when no ledger topic was configured at submission time; a failed
// submission aborts the whole ingestion and no record exists.
type ReportRecord struct {
	ID         uuid.UUID           `db:"id" json:"id"`
	PatientID  string              `db:"patient_id" json:"patientId"`
	HospitalID string              `db:"hospital_id" json:"hospitalId"`
	ReportHash string              `db:"report_hash" json:"reportHash"`
	HederaTxID *string             `db:"hedera_tx_id" json:"hederaTxId"`
	UploadedAt time.Time           `db:"uploaded_at" json:"uploadedAt"`
	ParsedData *extract.ParsedData `db:"parsed_data" json:"parsedData"`
}
