package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"choreographer/internal/domain"
)

// ActivityRecord is one transaction as the bank's history service returns
// it. Amount and timestamp are kept raw because the upstream emits both
// numbers and strings.
type ActivityRecord struct {
	ID        string          `json:"transaction_id,omitempty"`
	AccountID string          `json:"account_id,omitempty"`
	Amount    json.RawMessage `json:"amount,omitempty"`
	From      string          `json:"from_routing_num,omitempty"`
	To        string          `json:"to_routing_num,omitempty"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// UnmarshalJSON accepts either "id" or "transaction_id" for the record id.
func (r *ActivityRecord) UnmarshalJSON(data []byte) error {
	type plain ActivityRecord
	var aux struct {
		plain
		LegacyID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ActivityRecord(aux.plain)
	if r.ID == "" && len(aux.LegacyID) > 0 {
		r.ID = rawString(aux.LegacyID)
	}
	return nil
}

// User is a roster entry from the user service. It is carried for context
// only and never influences a decision.
type User map[string]any

// ParsedAmount returns the absolute amount. A missing or null amount is 0;
// anything that is not a number or numeric string is an error.
func (r ActivityRecord) ParsedAmount() (float64, error) {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	var v float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q is not numeric", s)
		}
		v = f
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("amount %s is not numeric", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %s is not finite", raw)
	}
	return math.Abs(v), nil
}

// When returns the record time, or fallback when absent or unreadable.
func (r ActivityRecord) When(fallback time.Time) domain.Timestamp {
	if len(bytes.TrimSpace(r.Timestamp)) == 0 {
		return domain.At(fallback)
	}
	var ts domain.Timestamp
	if err := json.Unmarshal(r.Timestamp, &ts); err != nil || ts.IsZero() {
		return domain.At(fallback)
	}
	return ts
}

func (r ActivityRecord) id() string {
	if r.ID == "" {
		return "unknown"
	}
	return r.ID
}

func (r ActivityRecord) account() string {
	if r.AccountID == "" {
		return "unknown"
	}
	return r.AccountID
}

// rawString renders a JSON scalar as a plain string.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
