package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medledger/medledger/internal/platform/extract"
)

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &reportRepoPG{pool: pool} }

const reportCols = `id, patient_id, hospital_id, report_hash, hedera_tx_id, uploaded_at, parsed_data`

func scanReport(row pgx.Row) (*ReportRecord, error) {
	var r ReportRecord
	var parsed []byte
	err := row.Scan(&r.ID, &r.PatientID, &r.HospitalID, &r.ReportHash, &r.HederaTxID, &r.UploadedAt, &parsed)
	if err != nil {
		return nil, err
	}
	if len(parsed) > 0 && string(parsed) != "null" {
		var pd extract.ParsedData
		if err := json.Unmarshal(parsed, &pd); err != nil {
			return nil, fmt.Errorf("decode parsed_data: %w", err)
		}
		r.ParsedData = &pd
	}
	return &r, nil
}

func (repo *reportRepoPG) Save(ctx context.Context, r *ReportRecord) error {
	var parsed []byte
	if r.ParsedData != nil {
		var err error
		parsed, err = json.Marshal(r.ParsedData)
		if err != nil {
			return fmt.Errorf("encode parsed_data: %w", err)
		}
	}
	_, err := repo.pool.Exec(ctx, `
		INSERT INTO patient_report (id, patient_id, hospital_id, report_hash, hedera_tx_id, uploaded_at, parsed_data)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.PatientID, r.HospitalID, r.ReportHash, r.HederaTxID, r.UploadedAt, parsed)
	return err
}

func (repo *reportRepoPG) FindByPatient(ctx context.Context, patientID string, limit, offset int) ([]*ReportRecord, int, error) {
	var total int
	if err := repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient_report WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Ties on uploaded_at are broken by id for a stable page order.
	query := `SELECT ` + reportCols + ` FROM patient_report WHERE patient_id = $1 ORDER BY uploaded_at DESC, id DESC`
	args := []interface{}{patientID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` OFFSET $2`
		args = append(args, offset)
	}

	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ReportRecord
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, r)
	}
	return items, total, rows.Err()
}
