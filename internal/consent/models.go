package consent

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a consent.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Audit trail actions.
const (
	ActionGranted = "consent_granted"
	ActionRevoked = "consent_revoked"
)

// Template describes one grantable kind of consent.
type Template struct {
	Key                  string
	Purpose              string
	Description          string
	DataScope            []string
	RetentionDays        int
	Revocable            bool
	ThirdPartyCategories []string
}

// Permissions expands the template into read/access grants per data type and
// share grants per third-party category.
func (t Template) Permissions() []string {
	perms := make([]string, 0, 2*len(t.DataScope)+len(t.ThirdPartyCategories))
	for _, d := range t.DataScope {
		perms = append(perms, "read:"+d, "access:"+d)
	}
	for _, c := range t.ThirdPartyCategories {
		perms = append(perms, "share:"+c)
	}
	return perms
}

// Compliance records which PSD3 articles the consent was issued under.
type Compliance struct {
	Article65         bool   `json:"article_65_compliant"`
	Article66         bool   `json:"article_66_compliant"`
	Article67         bool   `json:"article_67_compliant"`
	Granularity       string `json:"consent_granularity"`
	DataMinimization  bool   `json:"data_minimization"`
	PurposeLimitation bool   `json:"purpose_limitation"`
}

// AuditEvent is one entry of a consent's append-only history.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
}

// Metadata describes the record itself.
type Metadata struct {
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version"`
	Framework string    `json:"consent_framework"`
}

// Consent is a user's grant of data access to a third party.
type Consent struct {
	ID             string       `json:"consent_id"`
	UserID         string       `json:"user_id"`
	ThirdPartyName string       `json:"third_party_name"`
	Purpose        string       `json:"purpose"`
	Description    string       `json:"description"`
	DataScope      []string     `json:"data_scope"`
	Permissions    []string     `json:"permissions"`
	ValidFrom      time.Time    `json:"valid_from"`
	ValidUntil     time.Time    `json:"valid_until"`
	Revocable      bool         `json:"revocable"`
	Status         Status       `json:"status"`
	Compliance     Compliance   `json:"psd3_compliance"`
	AuditTrail     []AuditEvent `json:"audit_trail"`
	Metadata       Metadata     `json:"metadata"`
}

// Allows reports whether action is covered by a permission verb. An action
// such as "read:balances" or "read" is allowed by any read permission.
func (c Consent) Allows(action string) bool {
	for _, p := range c.Permissions {
		verb, _, _ := strings.Cut(p, ":")
		if strings.HasPrefix(action, verb) {
			return true
		}
	}
	return false
}

// Validation is the answer to "may this consent be used now".
type Validation struct {
	Valid     bool       `json:"valid"`
	Reason    string     `json:"reason"`
	Compliant bool       `json:"compliant"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Summary aggregates one user's consents.
type Summary struct {
	UserID       string   `json:"user_id"`
	Total        int      `json:"total_consents"`
	Active       int      `json:"active_consents"`
	Revoked      int      `json:"revoked_consents"`
	Purposes     []string `json:"consent_purposes"`
	ThirdParties []string `json:"third_parties"`
}
