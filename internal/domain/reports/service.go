package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medledger/medledger/internal/platform/extract"
	"github.com/medledger/medledger/internal/platform/fingerprint"
	"github.com/medledger/medledger/internal/platform/ledger"
	"github.com/medledger/medledger/internal/platform/telemetry"
)

// Service runs the ingestion pipeline and the read path. Each ingestion is
// one independent, sequential pipeline instance; the store and the remote
// services provide their own concurrency control.
type Service struct {
	repo      Repository
	notary    ledger.Notary
	extractor extract.Extractor

	ledgerTimeout  time.Duration
	extractTimeout time.Duration
	now            func() time.Time

	ingestTotal   *telemetry.Counter
	stageFailures map[Stage]*telemetry.Counter
}

func NewService(repo Repository, notary ledger.Notary, extractor extract.Extractor, ledgerTimeout, extractTimeout time.Duration) *Service {
	return &Service{
		repo:           repo,
		notary:         notary,
		extractor:      extractor,
		ledgerTimeout:  ledgerTimeout,
		extractTimeout: extractTimeout,
		now:            time.Now,
	}
}

// InstrumentWith registers pipeline counters on reg: total ingestion
// attempts plus one failure counter per stage.
func (s *Service) InstrumentWith(reg *telemetry.Registry) {
	s.ingestTotal = reg.Counter("ingest_total", "Total report ingestion attempts.")
	s.stageFailures = make(map[Stage]*telemetry.Counter)
	for _, stage := range []Stage{StageValidation, StageFingerprint, StageNotarize, StageExtract, StagePersist} {
		s.stageFailures[stage] = reg.Counter(
			fmt.Sprintf("ingest_%s_failures_total", stage),
			fmt.Sprintf("Report ingestions aborted at the %s stage.", stage),
		)
	}
}

func (s *Service) fail(stage Stage, err error) error {
	if c, ok := s.stageFailures[stage]; ok {
		c.Inc()
	}
	return failed(stage, err)
}

// Ingest runs the pipeline: validate, fingerprint, notarize, extract,
// persist. The first failure aborts the attempt with its stage attached.
//
// A successful notarization is not rolled back when a later stage fails: the
// ledger is append-only, so a fingerprint may appear on it without a
// corresponding record. That asymmetry is accepted; the alternative of
// silently omitting a failed notarization would make a failed submission
// indistinguishable from one that was never configured.
func (s *Service) Ingest(ctx context.Context, patientID, hospitalID string, doc io.ReadSeeker, contentType string) (*ReportRecord, error) {
	if s.ingestTotal != nil {
		s.ingestTotal.Inc()
	}

	patientID = strings.TrimSpace(patientID)
	hospitalID = strings.TrimSpace(hospitalID)
	if patientID == "" {
		return nil, s.fail(StageValidation, errors.New("patientId is required"))
	}
	if hospitalID == "" {
		return nil, s.fail(StageValidation, errors.New("hospitalId is required"))
	}
	if doc == nil {
		return nil, s.fail(StageValidation, errors.New("no file uploaded"))
	}

	hash, err := fingerprint.Sum(doc)
	if err != nil {
		return nil, s.fail(StageFingerprint, err)
	}

	lctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	receipt, err := s.notary.Notarize(lctx, patientID, hash, s.now().UTC())
	cancel()
	if err != nil {
		return nil, s.fail(StageNotarize, err)
	}

	if _, err := doc.Seek(0, io.SeekStart); err != nil {
		return nil, s.fail(StageExtract, err)
	}
	data, err := io.ReadAll(doc)
	if err != nil {
		return nil, s.fail(StageExtract, err)
	}

	ectx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	parsed, err := s.extractor.Extract(ectx, data, contentType)
	cancel()
	if err != nil {
		return nil, s.fail(StageExtract, err)
	}

	record := &ReportRecord{
		ID:         uuid.New(),
		PatientID:  patientID,
		HospitalID: hospitalID,
		ReportHash: hash,
		UploadedAt: s.now().UTC(),
		ParsedData: parsed,
	}
	if !receipt.Skipped {
		txID := receipt.TransactionID
		record.HederaTxID = &txID
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, s.fail(StagePersist, err)
	}
	return record, nil
}

// History returns the patient's records newest first. A patient with zero
// reports yields an empty sequence, not an error.
func (s *Service) History(ctx context.Context, patientID string, limit, offset int) ([]*ReportRecord, int, error) {
	return s.repo.FindByPatient(ctx, strings.TrimSpace(patientID), limit, offset)
}

// Summary computes the latest-wins summary over the patient's full history.
// A store failure propagates as-is; it never degrades into an empty summary.
func (s *Service) Summary(ctx context.Context, patientID string) (*Summary, error) {
	records, _, err := s.repo.FindByPatient(ctx, strings.TrimSpace(patientID), 0, 0)
	if err != nil {
		return nil, err
	}
	sum := Summarize(records)
	return &sum, nil
}
