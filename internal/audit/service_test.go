package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreographer/internal/a2a"
	"choreographer/internal/domain"
	"choreographer/pkg/testutil"
)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	ledger := NewLedger(context.Background(), store, testutil.DiscardLogger())
	return NewService(ledger, testutil.DiscardLogger(), opts...), store
}

func TestService_Record(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	svc, store := newTestService(t, WithClock(func() time.Time { return now }))

	entry := svc.Record(context.Background(), a2a.AuditLogRequest{
		ValidationResult: domain.ValidationResult{Decision: "approve", Confidence: 0.95, Reasoning: "ok"},
		TriggerData:      domain.ConsentTrigger{Type: "account_review", UserID: "bob"},
	})

	assert.Equal(t, UnknownSource, entry.SourceAgent)
	assert.Equal(t, domain.At(now), entry.Timestamp)
	assert.True(t, entry.ValidationResult.Valid)
	assert.Equal(t, domain.TriggerAccountActivityReview, entry.TriggerData.Type)
	assert.Equal(t, domain.DefaultProvider, entry.TriggerData.ThirdPartyProvider)
	assert.Contains(t, entry.RegulatoryNotes, "Account activity consent review completed")

	assert.Len(t, svc.Logs(), 1)
	assert.Equal(t, 1, store.Saves())
}

func TestService_RecordKeepsSenderTimestamp(t *testing.T) {
	svc, _ := newTestService(t)
	sent := domain.FromUnixSeconds(1700000000.25)

	entry := svc.Record(context.Background(), a2a.AuditLogRequest{
		ValidationResult: domain.NewValidationResult(domain.DecisionReject, 0.85, "x", domain.RiskHigh, false),
		SourceAgent:      string(domain.AgentValidation),
		Timestamp:        sent,
	})

	assert.Equal(t, sent, entry.Timestamp)
	assert.Equal(t, "ValidationAgent", entry.SourceAgent)
}

func TestService_RecordOffersToExporter(t *testing.T) {
	pub := &recordingPublisher{}
	exporter := NewExporter(pub, 1, testutil.DiscardLogger(), nil)
	svc, _ := newTestService(t, WithExporter(exporter))

	svc.Record(context.Background(), a2a.AuditLogRequest{
		ValidationResult: domain.NewValidationResult(domain.DecisionApprove, 0.9, "ok", domain.RiskLow, false),
	})

	assert.False(t, exporter.Offer(domain.AuditEntry{}), "recorded entry already occupies the buffer")
}

func TestService_HighValueThirdPartyScenario(t *testing.T) {
	svc, _ := newTestService(t)
	trigger := domain.ConsentTrigger{
		Type:               domain.TriggerHighValueTransaction,
		Amount:             7500,
		ThirdPartyProvider: "FinTechCorp",
		Purpose:            "loan",
	}
	entry := svc.Record(context.Background(), a2a.AuditLogRequest{
		ValidationResult: domain.NewValidationResult(domain.DecisionReject, 0.85,
			"High-value transaction requires enhanced scrutiny; Third-party data sharing must be explicitly consented to. Multiple PSD3 compliance concerns identified.",
			domain.RiskHigh, false),
		TriggerData: trigger,
		SourceAgent: string(domain.AgentValidation),
	})

	assert.Contains(t, entry.RegulatoryNotes, "• PSD3 Compliance: ❌ Request does not meet all regulatory requirements")
	assert.Contains(t, entry.RegulatoryNotes, "• High-Value Review: ❌ €7,500 requires additional compliance measures")
}

func TestService_HandleAuditLogRequest(t *testing.T) {
	svc, _ := newTestService(t)
	receiver := a2a.NewReceiver(domain.AgentAudit, a2a.WithReceiverLogger(testutil.DiscardLogger()))
	receiver.Handle(a2a.KindAuditLogRequest, svc.HandleAuditLogRequest)

	env, err := a2a.NewEnvelope(domain.AgentValidation, domain.AgentAudit, a2a.AuditLogRequest{
		ValidationResult: domain.NewValidationResult(domain.DecisionApprove, 0.95, "ok", domain.RiskLow, false),
	}, "", time.Now())
	require.NoError(t, err)

	misaddressed := env
	misaddressed.ToAgent = domain.AgentValidation
	resp := receiver.Receive(context.Background(), misaddressed)
	assert.Equal(t, "Message not for this agent", resp.Reason)
	assert.Empty(t, svc.Logs(), "rejected envelopes leave no audit entry")

	resp = receiver.Receive(context.Background(), env)
	assert.Equal(t, a2a.ResponseAccepted, resp.Status)
	assert.Equal(t, "Audit log recorded via A2A", resp.Extra["message"])
	assert.Len(t, svc.Logs(), 1)
}

func triggerIDs(entries []domain.AuditEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.TriggerData.TriggerID
	}
	return ids
}

func TestService_ConcurrentRecordKeepsLedgerAndFileInStep(t *testing.T) {
	const workers, perWorker = 10, 15
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	store := NewFileStore(filepath.Join(t.TempDir(), "audit_logs.json"))
	ledger := NewLedger(context.Background(), store, testutil.DiscardLogger())
	svc := NewService(ledger, testutil.DiscardLogger(), WithClock(func() time.Time { return now }))

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				svc.Record(context.Background(), a2a.AuditLogRequest{
					ValidationResult: domain.NewValidationResult(domain.DecisionReject, 0.85,
						"High-value transaction requires enhanced scrutiny; Third-party data sharing must be explicitly consented to.",
						domain.RiskHigh, false),
					TriggerData: domain.ConsentTrigger{
						TriggerID:          fmt.Sprintf("w%d-%d", w, i),
						Type:               domain.TriggerHighValueTransaction,
						Amount:             7500,
						ThirdPartyProvider: "FinTechCorp",
					},
				})
			}
		}()
	}
	wg.Wait()

	logs := svc.Logs()
	require.Len(t, logs, min(workers*perWorker, DefaultCapacity))

	ids := triggerIDs(logs)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate entry %s", id)
		seen[id] = true
	}

	persisted, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids, triggerIDs(persisted))

	reloaded := NewLedger(context.Background(), store, testutil.DiscardLogger())
	assert.Equal(t, ids, triggerIDs(reloaded.All()))
}
