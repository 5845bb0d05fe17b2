package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"choreographer/internal/decision"
	"choreographer/internal/decision/handler/mocks"
	"choreographer/internal/domain"
	"choreographer/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/decision-mocks.go -package=mocks Service
type ValidationHandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *mocks.MockService
}

func TestValidationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ValidationHandlerSuite))
}

func (s *ValidationHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, testutil.DiscardLogger()).Register(s.router)
}

func (s *ValidationHandlerSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/health", nil))

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.DecodeJSON[map[string]string](s.T(), rr)
	s.Equal("healthy", body["status"])
	s.Equal("ValidationAgent", body["agent"])
}

func (s *ValidationHandlerSuite) TestValidate() {
	result := domain.NewValidationResult(domain.DecisionReject, 0.85, "too risky", domain.RiskHigh, false)
	s.service.EXPECT().
		Validate(gomock.Any(), gomock.Any(), "").
		DoAndReturn(func(_ context.Context, trigger domain.ConsentTrigger, _ string) decision.Outcome {
			s.Equal(7500.0, trigger.Amount)
			s.Equal(domain.TriggerType("high_value_transaction"), trigger.Type)
			return decision.Outcome{Result: result, AuditMessageID: "ValidationAgent_1_abc", AuditDelivered: true}
		})

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/validate",
		`{"type":"high_value_transaction","user_id":"alice","amount":7500}`))

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.DecodeJSON[ValidateResponse](s.T(), rr)
	s.Equal("validated", body.Status)
	s.Equal(domain.DecisionReject, body.Result.Decision)
	s.False(body.Result.Valid)
	s.Equal("ValidationAgent_1_abc", body.AuditMessageID)
}

func (s *ValidationHandlerSuite) TestValidateRejectsBadBodies() {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "empty body", body: "", code: "bad_request"},
		{name: "malformed JSON", body: "{", code: "bad_request"},
		{name: "negative amount", body: `{"amount":-5}`, code: "validation_error"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/validate", tt.body))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, tt.code)
		})
	}
}
