package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/medledger/medledger/internal/platform/extract"
	"github.com/medledger/medledger/internal/platform/ledger"
	"github.com/medledger/medledger/internal/platform/telemetry"
)

// -- Fakes --

type mockRepo struct {
	saved     []*ReportRecord
	saveCalls int
	findCalls int
	saveErr   error
	findErr   error
}

func newMockRepo() *mockRepo { return &mockRepo{} }

func (m *mockRepo) Save(_ context.Context, r *ReportRecord) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *mockRepo) FindByPatient(_ context.Context, patientID string, limit, offset int) ([]*ReportRecord, int, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, 0, m.findErr
	}
	var result []*ReportRecord
	for _, r := range m.saved {
		if r.PatientID == patientID {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

type fakeNotary struct {
	calls   int
	receipt ledger.Receipt
	err     error
}

func (f *fakeNotary) Notarize(_ context.Context, patientID, reportHash string, _ time.Time) (ledger.Receipt, error) {
	f.calls++
	if f.err != nil {
		return ledger.Receipt{}, f.err
	}
	return f.receipt, nil
}

type fakeExtractor struct {
	calls  int
	parsed *extract.ParsedData
	err    error
}

func (f *fakeExtractor) Extract(_ context.Context, doc []byte, _ string) (*extract.ParsedData, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.parsed != nil {
		return f.parsed, nil
	}
	return &extract.ParsedData{DiagnosisSummary: fmt.Sprintf("findings for %d bytes", len(doc))}, nil
}

func newTestService(repo *mockRepo, notary *fakeNotary, extractor *fakeExtractor) *Service {
	svc := NewService(repo, notary, extractor, time.Second, time.Second)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func doc(content string) *bytes.Reader { return bytes.NewReader([]byte(content)) }

// -- Ingest --

func TestIngest_Success(t *testing.T) {
	repo := newMockRepo()
	notary := &fakeNotary{receipt: ledger.Receipt{TransactionID: "0.0.42@1717236000.000000001"}}
	extractor := &fakeExtractor{parsed: &extract.ParsedData{DiagnosisSummary: "Hypothyroidism", RiskLevel: "Moderate"}}
	svc := newTestService(repo, notary, extractor)

	record, err := svc.Ingest(context.Background(), " PAT-1 ", "HOSP-9", doc("report body"), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.PatientID != "PAT-1" || record.HospitalID != "HOSP-9" {
		t.Errorf("identifiers not trimmed: %q %q", record.PatientID, record.HospitalID)
	}
	if len(record.ReportHash) != 64 {
		t.Errorf("hash = %q", record.ReportHash)
	}
	if record.HederaTxID == nil || *record.HederaTxID != "0.0.42@1717236000.000000001" {
		t.Errorf("tx id = %v", record.HederaTxID)
	}
	if record.UploadedAt.IsZero() {
		t.Error("uploadedAt must be server-assigned")
	}
	if record.ParsedData == nil || record.ParsedData.DiagnosisSummary != "Hypothyroidism" {
		t.Errorf("parsedData = %+v", record.ParsedData)
	}
	if repo.saveCalls != 1 {
		t.Errorf("save calls = %d", repo.saveCalls)
	}
}

func TestIngest_SkippedNotarizationYieldsNullTxID(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &fakeNotary{receipt: ledger.Receipt{Skipped: true}}, &fakeExtractor{})

	record, err := svc.Ingest(context.Background(), "PAT-1", "HOSP-9", doc("report"), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.HederaTxID != nil {
		t.Errorf("skipped notarization must yield a null tx id, got %v", *record.HederaTxID)
	}
}

func TestIngest_ValidationFailureHasNoSideEffects(t *testing.T) {
	cases := []struct {
		name                  string
		patientID, hospitalID string
	}{
		{"missing patientId", "", "HOSP-9"},
		{"whitespace patientId", "   ", "HOSP-9"},
		{"missing hospitalId", "PAT-1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepo()
			notary := &fakeNotary{}
			extractor := &fakeExtractor{}
			svc := newTestService(repo, notary, extractor)

			_, err := svc.Ingest(context.Background(), tc.patientID, tc.hospitalID, doc("report"), "text/plain")
			if FailedStage(err) != StageValidation {
				t.Fatalf("expected validation failure, got %v", err)
			}
			if notary.calls != 0 || extractor.calls != 0 || repo.saveCalls != 0 {
				t.Errorf("validation failure must have no side effects: notary=%d extract=%d save=%d",
					notary.calls, extractor.calls, repo.saveCalls)
			}
		})
	}
}

func TestIngest_NilDocument(t *testing.T) {
	svc := newTestService(newMockRepo(), &fakeNotary{}, &fakeExtractor{})
	_, err := svc.Ingest(context.Background(), "PAT-1", "HOSP-9", nil, "")
	if FailedStage(err) != StageValidation {
		t.Errorf("expected validation failure, got %v", err)
	}
}

func TestIngest_NotarizeFailurePersistsNothing(t *testing.T) {
	repo := newMockRepo()
	notary := &fakeNotary{err: errors.New("ledger rejected the transaction")}
	extractor := &fakeExtractor{}
	svc := newTestService(repo, notary, extractor)

	_, err := svc.Ingest(context.Background(), "PAT-1", "HOSP-9", doc("report"), "text/plain")
	if FailedStage(err) != StageNotarize {
		t.Fatalf("expected notarize failure, got %v", err)
	}
	if extractor.calls != 0 {
		t.Error("extraction must not run after a failed notarization")
	}
	if repo.saveCalls != 0 {
		t.Error("no record may be persisted after a failed notarization")
	}
}

func TestIngest_ExtractFailurePersistsNothing(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &fakeNotary{receipt: ledger.Receipt{TransactionID: "tx-1"}},
		&fakeExtractor{err: errors.New("malformed extraction output")})

	_, err := svc.Ingest(context.Background(), "PAT-1", "HOSP-9", doc("report"), "text/plain")
	if FailedStage(err) != StageExtract {
		t.Fatalf("expected extract failure, got %v", err)
	}
	if repo.saveCalls != 0 {
		t.Error("no record may be persisted after a failed extraction")
	}
}

func TestIngest_PersistFailure(t *testing.T) {
	repo := newMockRepo()
	repo.saveErr = errors.New("store unavailable")
	svc := newTestService(repo, &fakeNotary{receipt: ledger.Receipt{Skipped: true}}, &fakeExtractor{})

	_, err := svc.Ingest(context.Background(), "PAT-1", "HOSP-9", doc("report"), "text/plain")
	if FailedStage(err) != StagePersist {
		t.Errorf("expected persist failure, got %v", err)
	}
}

func TestIngest_SameBytesSameHash(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &fakeNotary{receipt: ledger.Receipt{Skipped: true}}, &fakeExtractor{})

	first, err := svc.Ingest(context.Background(), "PAT-1", "HOSP-9", doc("identical content"), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Ingest(context.Background(), "PAT-1", "HOSP-9", doc("identical content"), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ReportHash != second.ReportHash {
		t.Errorf("byte-identical uploads must share a fingerprint: %s vs %s", first.ReportHash, second.ReportHash)
	}
}

func TestIngest_CountsAttemptsAndStageFailures(t *testing.T) {
	reg := telemetry.NewRegistry("test")
	repo := newMockRepo()
	svc := newTestService(repo, &fakeNotary{err: errors.New("ledger down")}, &fakeExtractor{})
	svc.InstrumentWith(reg)

	svc.Ingest(context.Background(), "PAT-1", "HOSP-9", doc("report"), "text/plain")
	svc.Ingest(context.Background(), "", "HOSP-9", doc("report"), "text/plain")

	if got := reg.Counter("ingest_total", "").Value(); got != 2 {
		t.Errorf("ingest_total = %d, want 2", got)
	}
	if got := reg.Counter("ingest_notarize_failures_total", "").Value(); got != 1 {
		t.Errorf("notarize failures = %d, want 1", got)
	}
	if got := reg.Counter("ingest_validation_failures_total", "").Value(); got != 1 {
		t.Errorf("validation failures = %d, want 1", got)
	}
	if got := reg.Counter("ingest_persist_failures_total", "").Value(); got != 0 {
		t.Errorf("persist failures = %d, want 0", got)
	}
}

// -- Read path --

func TestHistory_EmptyIsNotAnError(t *testing.T) {
	svc := newTestService(newMockRepo(), &fakeNotary{}, &fakeExtractor{})
	items, total, err := svc.History(context.Background(), "nobody", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 || total != 0 {
		t.Errorf("items = %v, total = %d", items, total)
	}
}

func TestSummary_StoreFailurePropagates(t *testing.T) {
	repo := newMockRepo()
	repo.findErr = errors.New("store unreachable")
	svc := newTestService(repo, &fakeNotary{}, &fakeExtractor{})

	if _, err := svc.Summary(context.Background(), "PAT-1"); err == nil {
		t.Error("an unreachable store must never yield an empty-but-successful summary")
	}
}
