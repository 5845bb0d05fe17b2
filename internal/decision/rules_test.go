package decision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreographer/internal/domain"
)

func TestEvaluateRules(t *testing.T) {
	tests := []struct {
		name       string
		trigger    domain.ConsentTrigger
		decision   domain.Decision
		confidence float64
		risk       domain.RiskLevel
		reasoning  string
	}{
		{
			name:       "plain low value",
			trigger:    domain.ConsentTrigger{Type: domain.TriggerOther, Amount: 100, ThirdPartyProvider: "bank"},
			decision:   domain.DecisionApprove,
			confidence: 0.95,
			risk:       domain.RiskLow,
			reasoning:  "Low-risk transaction compliant with PSD3 requirements.",
		},
		{
			name:       "third party alone stays low",
			trigger:    domain.ConsentTrigger{Type: domain.TriggerThirdPartyDataSharing, Amount: 10, ThirdPartyProvider: "FinTechCorp"},
			decision:   domain.DecisionApprove,
			confidence: 0.95,
			risk:       domain.RiskLow,
			reasoning:  "Low-risk transaction compliant with PSD3 requirements.",
		},
		{
			name:       "international purpose scores two",
			trigger:    domain.ConsentTrigger{Type: domain.TriggerInternationalTransfer, Amount: 2000, Purpose: "Cross-Border payment", ThirdPartyProvider: "bank"},
			decision:   domain.DecisionApprove,
			confidence: 0.75,
			risk:       domain.RiskMedium,
			reasoning:  "International transfer requires additional verification. Approved with conditions per PSD3 requirements.",
		},
		{
			name:       "high value alone scores three",
			trigger:    domain.ConsentTrigger{Type: domain.TriggerHighValueTransaction, Amount: 7500, ThirdPartyProvider: "bank"},
			decision:   domain.DecisionApprove,
			confidence: 0.75,
			risk:       domain.RiskMedium,
			reasoning:  "High-value transaction requires enhanced scrutiny. Approved with conditions per PSD3 requirements.",
		},
		{
			name:       "high value with third party rejects",
			trigger:    domain.ConsentTrigger{Type: domain.TriggerHighValueTransaction, Amount: 7500, ThirdPartyProvider: "InvestmentApp"},
			decision:   domain.DecisionReject,
			confidence: 0.85,
			risk:       domain.RiskHigh,
			reasoning:  "High-value transaction requires enhanced scrutiny; Third-party data sharing must be explicitly consented to. Multiple PSD3 compliance concerns identified.",
		},
		{
			name:       "exactly 5000 is not high value",
			trigger:    domain.ConsentTrigger{Type: domain.TriggerOther, Amount: 5000, ThirdPartyProvider: "bank"},
			decision:   domain.DecisionApprove,
			confidence: 0.95,
			risk:       domain.RiskLow,
			reasoning:  "Low-risk transaction compliant with PSD3 requirements.",
		},
		{
			name:       "account review with international purpose",
			trigger:    domain.ConsentTrigger{Type: domain.TriggerAccountActivityReview, Purpose: "international", ThirdPartyProvider: "bank"},
			decision:   domain.DecisionApprove,
			confidence: 0.75,
			risk:       domain.RiskMedium,
			reasoning:  "International transfer requires additional verification; Account activity review requires user confirmation. Approved with conditions per PSD3 requirements.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateRules(tt.trigger)
			assert.Equal(t, tt.decision, got.Decision)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.risk, got.RiskLevel)
			assert.Equal(t, tt.reasoning, got.Reasoning)
			assert.Equal(t, tt.decision == domain.DecisionApprove, got.Valid)
			assert.False(t, got.AIProcessed)
		})
	}
}

func TestRuleStrategy(t *testing.T) {
	var s RuleStrategy
	assert.Equal(t, StrategyRules, s.Name())

	got, err := s.Evaluate(context.Background(), domain.ConsentTrigger{Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionApprove, got.Decision)
}
