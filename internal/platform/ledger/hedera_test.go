package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewHederaNotary_NoTopicMeansSkipped(t *testing.T) {
	n, err := NewHederaNotary(HederaConfig{Network: "testnet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Enabled() {
		t.Error("notary should be disabled without a topic")
	}

	receipt, err := n.Notarize(context.Background(), "PAT-1", "abc", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !receipt.Skipped {
		t.Error("expected skipped receipt")
	}
	if receipt.TransactionID != "" {
		t.Errorf("skipped receipt must not carry a transaction id, got %q", receipt.TransactionID)
	}
}

func TestNewHederaNotary_TopicWithoutCredentials(t *testing.T) {
	cases := []HederaConfig{
		{Network: "testnet", TopicID: "0.0.1234"},
		{Network: "testnet", TopicID: "0.0.1234", AccountID: "0.0.42"},
		{Network: "testnet", TopicID: "0.0.1234", PrivateKey: "302e..."},
	}
	for _, cfg := range cases {
		if _, err := NewHederaNotary(cfg); err == nil {
			t.Errorf("expected configuration error for %+v", cfg)
		}
	}
}

func TestNewHederaNotary_MalformedTopic(t *testing.T) {
	_, err := NewHederaNotary(HederaConfig{
		Network:    "testnet",
		TopicID:    "not-a-topic",
		AccountID:  "0.0.42",
		PrivateKey: "key",
	})
	if err == nil {
		t.Error("expected error for malformed topic id")
	}
}

func TestTopicMessage_Shape(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	payload, err := json.Marshal(topicMessage{
		PatientID:  "PAT-1",
		ReportHash: "deadbeef",
		Timestamp:  ts.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"patientId":"PAT-1","reportHash":"deadbeef","timestamp":"2025-03-01T12:30:00Z"}`
	if string(payload) != want {
		t.Errorf("payload mismatch:\n got %s\nwant %s", payload, want)
	}
}
