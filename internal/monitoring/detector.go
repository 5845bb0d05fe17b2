// Package monitoring turns bank activity into consent triggers and ships
// them to the ValidationAgent.
package monitoring

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"choreographer/internal/domain"
)

const (
	HighValueThreshold  = 5000.0
	ThirdPartyThreshold = 1000.0

	// ReviewMinRecords is the number of new records on one account that
	// triggers an activity review.
	ReviewMinRecords = 3
)

// Detector applies the per-record policy and the periodic review fallback.
// It remembers how many records it has already seen; that count only grows.
type Detector struct {
	mu     sync.Mutex
	seen   int
	logger *slog.Logger
	now    func() time.Time
}

// NewDetector creates a detector that has seen nothing yet.
func NewDetector(logger *slog.Logger) *Detector {
	return &Detector{logger: logger, now: time.Now}
}

// Seen returns how many records have been observed across all cycles.
func (d *Detector) Seen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen
}

// Detect evaluates every record in records, which is the full history for
// the monitored accounts in arrival order. Records past the previously seen
// count are new. users is informational only.
func (d *Detector) Detect(records []ActivityRecord, users []User) []domain.ConsentTrigger {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	firstNew := len(records)
	if len(records) > d.seen {
		firstNew = d.seen
		d.seen = len(records)
	}
	newRecords := records[firstNew:]

	now := d.now()
	var triggers []domain.ConsentTrigger
	firedOnNew := false
	for i, rec := range records {
		t, ok := d.analyze(rec, now)
		if !ok {
			continue
		}
		triggers = append(triggers, t)
		if i >= firstNew {
			firedOnNew = true
		}
	}

	if !firedOnNew && len(newRecords) > 0 {
		triggers = append(triggers, reviewTriggers(newRecords, now)...)
	}

	d.logger.Info("consent triggers detected",
		"records", len(records),
		"new_records", len(newRecords),
		"users", len(users),
		"triggers", len(triggers),
	)
	return triggers
}

// analyze applies the first matching rule to one record.
func (d *Detector) analyze(rec ActivityRecord, now time.Time) (domain.ConsentTrigger, bool) {
	amount, err := rec.ParsedAmount()
	if err != nil {
		d.logger.Warn("skipping record with unreadable amount",
			"transaction_id", rec.id(),
			"error", err,
		)
		return domain.ConsentTrigger{}, false
	}

	t := domain.ConsentTrigger{
		TransactionID: rec.id(),
		Amount:        amount,
		UserID:        rec.account(),
		Timestamp:     rec.When(now),
	}
	switch {
	case amount > HighValueThreshold:
		t.Type = domain.TriggerHighValueTransaction
		t.Reason = fmt.Sprintf("High-value transaction (€%.2f) detected - PSD3 consent required for processing", amount)
	case rec.From != "" && rec.To != "" && rec.From != rec.To:
		t.Type = domain.TriggerInternationalTransfer
		t.Reason = fmt.Sprintf("International transfer detected (routing: %s → %s) - consent required", rec.From, rec.To)
	case amount > ThirdPartyThreshold:
		t.Type = domain.TriggerThirdPartyDataSharing
		t.Reason = fmt.Sprintf("Large transaction (€%.2f) may indicate third-party data sharing - consent verification required", amount)
	default:
		return domain.ConsentTrigger{}, false
	}
	return t, true
}

// reviewTriggers emits one account_activity_review per account holding at
// least ReviewMinRecords of the new records, in order of first appearance.
func reviewTriggers(newRecords []ActivityRecord, now time.Time) []domain.ConsentTrigger {
	counts := make(map[string]int)
	var order []string
	for _, rec := range newRecords {
		acct := rec.account()
		if counts[acct] == 0 {
			order = append(order, acct)
		}
		counts[acct]++
	}

	var out []domain.ConsentTrigger
	for _, acct := range order {
		n := counts[acct]
		if n < ReviewMinRecords {
			continue
		}
		out = append(out, domain.ConsentTrigger{
			Type:             domain.TriggerAccountActivityReview,
			UserID:           acct,
			TransactionCount: n,
			Timestamp:        domain.At(now),
			Reason:           fmt.Sprintf("Multiple transactions detected for account %s - consent review required", acct),
		})
	}
	return out
}
