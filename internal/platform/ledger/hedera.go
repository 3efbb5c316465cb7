package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// HederaConfig holds the operator credentials and topic for the Hedera
// Consensus Service. An empty TopicID disables notarization entirely.
type HederaConfig struct {
	Network    string
	AccountID  string
	PrivateKey string
	TopicID    string
}

// HederaNotary submits topic messages to the Hedera network. When no topic is
// configured it reports every notarization as skipped without touching the
// network.
type HederaNotary struct {
	client  *hedera.Client
	topicID hedera.TopicID
	enabled bool
}

// NewHederaNotary validates the configuration up front: a configured topic
// with missing operator credentials is a startup error, not something to
// discover after a document has already been uploaded.
func NewHederaNotary(cfg HederaConfig) (*HederaNotary, error) {
	if cfg.TopicID == "" {
		return &HederaNotary{}, nil
	}
	if cfg.AccountID == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("hedera topic %s is configured but operator credentials are missing", cfg.TopicID)
	}

	topicID, err := hedera.TopicIDFromString(cfg.TopicID)
	if err != nil {
		return nil, fmt.Errorf("parse HEDERA_TOPIC_ID: %w", err)
	}
	accountID, err := hedera.AccountIDFromString(cfg.AccountID)
	if err != nil {
		return nil, fmt.Errorf("parse HEDERA_ACCOUNT_ID: %w", err)
	}
	privateKey, err := hedera.PrivateKeyFromString(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parse HEDERA_PRIVATE_KEY: %w", err)
	}

	client, err := hedera.ClientForName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("hedera network %q: %w", cfg.Network, err)
	}
	client.SetOperator(accountID, privateKey)

	return &HederaNotary{client: client, topicID: topicID, enabled: true}, nil
}

// Enabled reports whether a ledger topic is configured.
func (n *HederaNotary) Enabled() bool { return n.enabled }

// Notarize submits {patientId, reportHash, timestamp} to the configured topic
// and returns the network-assigned transaction id. The SDK call does not take
// a context, so it runs in a goroutine and the deadline is enforced here; on
// timeout the ledger may still have accepted the message, which the caller
// treats as a notarization failure.
func (n *HederaNotary) Notarize(ctx context.Context, patientID, reportHash string, ts time.Time) (Receipt, error) {
	if !n.enabled {
		return Receipt{Skipped: true}, nil
	}

	payload, err := json.Marshal(topicMessage{
		PatientID:  patientID,
		ReportHash: reportHash,
		Timestamp:  ts.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("encode topic message: %w", err)
	}

	type outcome struct {
		txID string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		resp, err := hedera.NewTopicMessageSubmitTransaction().
			SetTopicID(n.topicID).
			SetMessage(payload).
			Execute(n.client)
		if err != nil {
			done <- outcome{err: fmt.Errorf("submit topic message: %w", err)}
			return
		}
		if _, err := resp.GetReceipt(n.client); err != nil {
			done <- outcome{err: fmt.Errorf("topic message rejected: %w", err)}
			return
		}
		done <- outcome{txID: resp.TransactionID.String()}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return Receipt{}, out.err
		}
		return Receipt{TransactionID: out.txID}, nil
	case <-ctx.Done():
		return Receipt{}, fmt.Errorf("notarization: %w", ctx.Err())
	}
}

// Close releases the underlying network client.
func (n *HederaNotary) Close() error {
	if n.client == nil {
		return nil
	}
	return n.client.Close()
}
