package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "choreographer/pkg/domain-errors"
)

// TriggerType classifies why a consent decision is needed.
type TriggerType string

const (
	TriggerHighValueTransaction  TriggerType = "high_value_transaction"
	TriggerInternationalTransfer TriggerType = "international_transfer"
	TriggerThirdPartyDataSharing TriggerType = "third_party_data_sharing"
	TriggerAccountActivityReview TriggerType = "account_activity_review"
	TriggerOther                 TriggerType = "other"
)

// triggerAliases maps the spellings used by older demo generators.
var triggerAliases = map[string]TriggerType{
	"account_review":      TriggerAccountActivityReview,
	"third_party_sharing": TriggerThirdPartyDataSharing,
}

// ParseTriggerType returns the canonical type. Unknown values map to
// TriggerOther; the function never fails.
func ParseTriggerType(s string) TriggerType {
	t := TriggerType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TriggerHighValueTransaction, TriggerInternationalTransfer,
		TriggerThirdPartyDataSharing, TriggerAccountActivityReview, TriggerOther:
		return t
	}
	if alias, ok := triggerAliases[string(t)]; ok {
		return alias
	}
	return TriggerOther
}

// DefaultProvider marks a trigger that involves no third party.
const DefaultProvider = "bank"

// ConsentTrigger is a detected event requiring a consent decision. It is
// treated as an immutable value once normalised.
type ConsentTrigger struct {
	TriggerID          string      `json:"trigger_id"`
	Type               TriggerType `json:"type"`
	RawType            string      `json:"raw_type,omitempty"`
	UserID             string      `json:"user_id"`
	Amount             float64     `json:"amount"`
	Purpose            string      `json:"purpose,omitempty"`
	ThirdPartyProvider string      `json:"third_party_provider"`
	DataScope          []string    `json:"data_scope,omitempty"`
	Timestamp          Timestamp   `json:"timestamp"`
	TransactionID      string      `json:"transaction_id,omitempty"`
	TransactionCount   int         `json:"transaction_count,omitempty"`
	Reason             string      `json:"reason,omitempty"`
	ConsentRequired    bool        `json:"consent_required,omitempty"`
}

// Validate enforces the amount invariant. Call before Normalize at trust
// boundaries.
func (t ConsentTrigger) Validate() error {
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return dErrors.New(dErrors.CodeValidation, "amount must be a finite number")
	}
	if t.Amount < 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be non-negative")
	}
	return nil
}

// Normalize returns a copy with every default applied: generated id,
// canonical type (the original spelling kept in RawType), bank provider and
// detection time.
func (t ConsentTrigger) Normalize(now time.Time) ConsentTrigger {
	if t.TriggerID == "" {
		t.TriggerID = uuid.NewString()
	}
	canonical := ParseTriggerType(string(t.Type))
	if string(canonical) != string(t.Type) && t.RawType == "" {
		t.RawType = string(t.Type)
	}
	t.Type = canonical
	if strings.TrimSpace(t.ThirdPartyProvider) == "" {
		t.ThirdPartyProvider = DefaultProvider
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = At(now)
	}
	if t.DataScope != nil {
		t.DataScope = append([]string(nil), t.DataScope...)
	}
	return t
}

// HasThirdParty reports whether data leaves the bank.
func (t ConsentTrigger) HasThirdParty() bool {
	return t.ThirdPartyProvider != "" && t.ThirdPartyProvider != DefaultProvider
}

// DisplayType is the type as the originating agent spelled it.
func (t ConsentTrigger) DisplayType() string {
	if t.RawType != "" {
		return t.RawType
	}
	return string(t.Type)
}
