package consent

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "choreographer/pkg/domain-errors"
)

type ManagerSuite struct {
	suite.Suite
	now     time.Time
	manager *Manager
	ctx     context.Context
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	s.manager = NewManager(NewMemoryStore(),
		WithClock(func() time.Time { return s.now }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("consent_%016d", n) }),
	)
}

func (s *ManagerSuite) TestGenerateFromTemplate() {
	c, err := s.manager.Generate(s.ctx, "alice", "budgeting", "")
	s.Require().NoError(err)

	s.Equal("consent_0000000000000001", c.ID)
	s.Equal("budgeting_app_access", c.Purpose)
	s.Equal("mock_budgeting_app", c.ThirdPartyName)
	s.Equal(StatusActive, c.Status)
	s.Equal(s.now.AddDate(0, 0, 365), c.ValidUntil)
	s.Equal([]string{
		"read:transactions", "access:transactions", "read:balances", "access:balances",
		"share:budgeting", "share:financial_planning",
	}, c.Permissions)
	s.Require().Len(c.AuditTrail, 1)
	s.Equal(ActionGranted, c.AuditTrail[0].Action)
	s.Equal("User alice granted consent for budgeting", c.AuditTrail[0].Details)
	s.True(c.Compliance.Article65)
	s.Equal("PSD3", c.Metadata.Framework)
}

func (s *ManagerSuite) TestGenerateRejectsUnknownTemplate() {
	_, err := s.manager.Generate(s.ctx, "alice", "crypto", "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.manager.Generate(s.ctx, " ", "budgeting", "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ManagerSuite) TestValidate() {
	c, err := s.manager.Generate(s.ctx, "alice", "payment_initiation", "PayCo")
	s.Require().NoError(err)

	v, err := s.manager.Validate(s.ctx, c.ID, "")
	s.Require().NoError(err)
	s.True(v.Valid)
	s.Equal("Consent valid", v.Reason)
	s.Require().NotNil(v.ExpiresAt)
	s.Equal(c.ValidUntil, *v.ExpiresAt)

	v, _ = s.manager.Validate(s.ctx, c.ID, "read:accounts")
	s.True(v.Valid)

	v, _ = s.manager.Validate(s.ctx, c.ID, "delete:accounts")
	s.False(v.Valid)
	s.Equal("Action not permitted: delete:accounts", v.Reason)
	s.True(v.Compliant)

	v, _ = s.manager.Validate(s.ctx, "consent_missing", "")
	s.False(v.Valid)
	s.False(v.Compliant)
	s.Equal("Consent not found", v.Reason)

	s.now = s.now.AddDate(0, 0, 91)
	v, _ = s.manager.Validate(s.ctx, c.ID, "")
	s.False(v.Valid)
	s.Equal("Consent expired", v.Reason)
}

func (s *ManagerSuite) TestRevoke() {
	c, err := s.manager.Generate(s.ctx, "alice", "account_info", "")
	s.Require().NoError(err)

	revoked, err := s.manager.Revoke(s.ctx, c.ID, "")
	s.Require().NoError(err)
	s.Equal(StatusRevoked, revoked.Status)
	s.Require().Len(revoked.AuditTrail, 2)
	s.Equal(ActionRevoked, revoked.AuditTrail[1].Action)
	s.Equal("User revoked consent", revoked.AuditTrail[1].Details)

	v, _ := s.manager.Validate(s.ctx, c.ID, "")
	s.False(v.Valid)
	s.Equal("Consent status: revoked", v.Reason)

	_, err = s.manager.Revoke(s.ctx, c.ID, "again")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.manager.Revoke(s.ctx, "consent_missing", "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ManagerSuite) TestListAndSummary() {
	a1, _ := s.manager.Generate(s.ctx, "alice", "budgeting", "BudgetCo")
	_, _ = s.manager.Generate(s.ctx, "alice", "account_info", "Aggregator")
	_, _ = s.manager.Generate(s.ctx, "bob", "budgeting", "BudgetCo")
	_, err := s.manager.Revoke(s.ctx, a1.ID, "CLI revocation")
	s.Require().NoError(err)

	all, err := s.manager.List(s.ctx, "", "")
	s.Require().NoError(err)
	s.Len(all, 3)

	active, _ := s.manager.List(s.ctx, "alice", StatusActive)
	s.Require().Len(active, 1)
	s.Equal("account_information", active[0].Purpose)

	sum, err := s.manager.Summary(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(Summary{
		UserID:       "alice",
		Total:        2,
		Active:       1,
		Revoked:      1,
		Purposes:     []string{"account_information"},
		ThirdParties: []string{"Aggregator"},
	}, sum)

	empty, _ := s.manager.Summary(s.ctx, "carol")
	s.Equal(0, empty.Total)
	s.NotNil(empty.Purposes)
}

func (s *ManagerSuite) TestFileStorePersistsAcrossManagers() {
	path := filepath.Join(s.T().TempDir(), "consents.json")
	first := NewManager(NewFileStore(path))
	c, err := first.Generate(s.ctx, "alice", "budgeting", "")
	s.Require().NoError(err)

	second := NewManager(NewFileStore(path))
	_, err = second.Revoke(s.ctx, c.ID, "")
	s.Require().NoError(err)

	listed, err := NewManager(NewFileStore(path)).List(s.ctx, "alice", "")
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(StatusRevoked, listed[0].Status)
	s.Len(listed[0].AuditTrail, 2)
	s.Regexp(`^consent_[0-9a-f]{16}$`, listed[0].ID)
}

func (s *ManagerSuite) TestTemplateKeys() {
	s.Equal([]string{"account_info", "budgeting", "payment_initiation"}, TemplateKeys())
}
