package reports

import (
	"context"
)

// Repository persists report records. Save is a single atomic write: a
// record is stored in full or not at all. FindByPatient returns records
// newest first; limit <= 0 returns the full history.
type Repository interface {
	Save(ctx context.Context, r *ReportRecord) error
	FindByPatient(ctx context.Context, patientID string, limit, offset int) ([]*ReportRecord, int, error)
}
