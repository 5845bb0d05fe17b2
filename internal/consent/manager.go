// Package consent manages PSD3 consent records: granting from templates,
// validation against time, status and permissions, and revocation with an
// append-only audit trail.
package consent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "choreographer/pkg/domain-errors"
	"choreographer/pkg/platform/sentinel"
)

const (
	recordVersion = "1.0"
	framework     = "PSD3"
	actorUser     = "user"
)

// Manager issues and checks consents.
type Manager struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides consent id generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates a manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return "consent_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16] },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate grants a new active consent for userID from the named template.
// An empty thirdParty gets a mock name derived from the template.
func (m *Manager) Generate(ctx context.Context, userID, templateKey, thirdParty string) (Consent, error) {
	if strings.TrimSpace(userID) == "" {
		return Consent{}, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	tmpl, ok := LookupTemplate(templateKey)
	if !ok {
		return Consent{}, dErrors.New(dErrors.CodeValidation, "Unknown consent purpose: "+templateKey)
	}
	if thirdParty == "" {
		thirdParty = fmt.Sprintf("mock_%s_app", templateKey)
	}

	now := m.now()
	c := Consent{
		ID:             m.newID(),
		UserID:         userID,
		ThirdPartyName: thirdParty,
		Purpose:        tmpl.Purpose,
		Description:    tmpl.Description,
		DataScope:      append([]string(nil), tmpl.DataScope...),
		Permissions:    tmpl.Permissions(),
		ValidFrom:      now,
		ValidUntil:     now.AddDate(0, 0, tmpl.RetentionDays),
		Revocable:      tmpl.Revocable,
		Status:         StatusActive,
		Compliance: Compliance{
			Article65:         true,
			Article66:         true,
			Article67:         true,
			Granularity:       "specific",
			DataMinimization:  true,
			PurposeLimitation: true,
		},
		AuditTrail: []AuditEvent{{
			Timestamp: now,
			Action:    ActionGranted,
			Actor:     actorUser,
			Details:   fmt.Sprintf("User %s granted consent for %s", userID, templateKey),
		}},
		Metadata: Metadata{CreatedAt: now, Version: recordVersion, Framework: framework},
	}
	if err := m.store.Put(ctx, c); err != nil {
		return Consent{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store consent")
	}
	return c, nil
}

// Validate reports whether consent id may be used now, optionally for a
// specific action. Only store failures are errors; every business outcome is
// a Validation.
func (m *Manager) Validate(ctx context.Context, id, action string) (Validation, error) {
	c, err := m.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Validation{Reason: "Consent not found"}, nil
	}
	if err != nil {
		return Validation{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent")
	}

	switch {
	case m.now().After(c.ValidUntil):
		return Validation{Reason: "Consent expired", Compliant: true}, nil
	case c.Status != StatusActive:
		return Validation{Reason: fmt.Sprintf("Consent status: %s", c.Status), Compliant: true}, nil
	case action != "" && !c.Allows(action):
		return Validation{Reason: "Action not permitted: " + action, Compliant: true}, nil
	}
	expires := c.ValidUntil
	return Validation{Valid: true, Reason: "Consent valid", Compliant: true, ExpiresAt: &expires}, nil
}

// Revoke marks consent id revoked and appends to its audit trail.
func (m *Manager) Revoke(ctx context.Context, id, reason string) (Consent, error) {
	c, err := m.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Consent{}, dErrors.New(dErrors.CodeNotFound, "consent not found")
	}
	if err != nil {
		return Consent{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent")
	}
	if !c.Revocable {
		return Consent{}, dErrors.New(dErrors.CodeForbidden, "consent is not revocable")
	}
	if c.Status == StatusRevoked {
		return Consent{}, dErrors.New(dErrors.CodeConflict, "consent already revoked")
	}
	if reason == "" {
		reason = "User revoked consent"
	}

	c.Status = StatusRevoked
	c.AuditTrail = append(append([]AuditEvent(nil), c.AuditTrail...), AuditEvent{
		Timestamp: m.now(),
		Action:    ActionRevoked,
		Actor:     actorUser,
		Details:   reason,
	})
	if err := m.store.Put(ctx, c); err != nil {
		return Consent{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store consent")
	}
	return c, nil
}

// List returns consents filtered by user and status; empty filters match all.
func (m *Manager) List(ctx context.Context, userID string, status Status) ([]Consent, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	out := make([]Consent, 0, len(all))
	for _, c := range all {
		if userID != "" && c.UserID != userID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Summary counts a user's consents. Purposes and third parties are those of
// active consents, deduplicated and sorted.
func (m *Manager) Summary(ctx context.Context, userID string) (Summary, error) {
	consents, err := m.List(ctx, userID, "")
	if err != nil {
		return Summary{}, err
	}
	s := Summary{UserID: userID, Total: len(consents)}
	purposes := map[string]bool{}
	parties := map[string]bool{}
	for _, c := range consents {
		switch c.Status {
		case StatusActive:
			s.Active++
			purposes[c.Purpose] = true
			parties[c.ThirdPartyName] = true
		case StatusRevoked:
			s.Revoked++
		}
	}
	s.Purposes = sortedKeys(purposes)
	s.ThirdParties = sortedKeys(parties)
	return s, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
