package audit

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"choreographer/internal/domain"
)

func TestNotes_Template(t *testing.T) {
	t.Run("approved high value", func(t *testing.T) {
		notes := Notes(
			domain.NewValidationResult(domain.DecisionApprove, 0.95, "short", domain.RiskLow, false),
			domain.ConsentTrigger{Type: domain.TriggerHighValueTransaction, ThirdPartyProvider: "bank"},
		)

		assert.Equal(t, []string{
			"PSD3 Article 64 compliance confirmed",
			"Explicit consent obtained for data processing",
			"Data minimization principles applied",
			"Right to withdraw consent maintained",
			"Transparent privacy notice provided",
			"AI validation confidence: 95.0%",
			"High-value transaction consent validated",
		}, notes)
	})

	t.Run("rejected with low confidence requires manual review", func(t *testing.T) {
		notes := Notes(
			domain.NewValidationResult(domain.DecisionReject, 0.4, "", domain.RiskHigh, true),
			domain.ConsentTrigger{Type: domain.TriggerOther},
		)

		assert.Equal(t, "REJECTED: Validation failed", notes[0])
		assert.Contains(t, notes, "AI validation confidence: 40.0%")
		assert.Equal(t, "CRITICAL: Low confidence validation - manual review required", notes[len(notes)-1])
	})

	t.Run("moderate confidence warns", func(t *testing.T) {
		notes := Notes(
			domain.NewValidationResult(domain.DecisionReject, 0.6, "Too vague.", domain.RiskMedium, true),
			domain.ConsentTrigger{Type: domain.TriggerOther},
		)

		assert.Equal(t, "REJECTED: Too vague.", notes[0])
		assert.Equal(t, "WARNING: Moderate confidence - additional verification recommended", notes[len(notes)-1])
	})

	t.Run("confident rejection has no warning", func(t *testing.T) {
		notes := Notes(
			domain.NewValidationResult(domain.DecisionReject, 0.85, "", domain.RiskHigh, false),
			domain.ConsentTrigger{Type: domain.TriggerOther},
		)
		for _, n := range notes {
			assert.False(t, strings.HasPrefix(n, "WARNING") || strings.HasPrefix(n, "CRITICAL"), n)
		}
	})
}

func TestNotes_ApprovalCarriesNoConfidenceWarning(t *testing.T) {
	for _, c := range []float64{0.3, 0.6} {
		notes := Notes(
			domain.NewValidationResult(domain.DecisionApprove, c, "ok", domain.RiskLow, true),
			domain.ConsentTrigger{Type: domain.TriggerOther},
		)
		assert.Equal(t, "Transparent privacy notice provided", notes[4])
		for _, n := range notes {
			assert.False(t, strings.HasPrefix(n, "WARNING") || strings.HasPrefix(n, "CRITICAL"), n)
		}
	}
}

func TestNotes_ConcurrentCallers(t *testing.T) {
	reasoning := "High-value transaction requires enhanced scrutiny; Third-party data sharing must be explicitly consented to."
	result := domain.NewValidationResult(domain.DecisionReject, 0.85, reasoning, domain.RiskHigh, false)
	trigger := domain.ConsentTrigger{
		Type:               domain.TriggerHighValueTransaction,
		Amount:             7500,
		ThirdPartyProvider: "FinTechCorp",
	}
	want := Notes(result, trigger)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				assert.Equal(t, want, Notes(result, trigger))
			}
		}()
	}
	wg.Wait()
}

func TestNotes_Assessment(t *testing.T) {
	reasoning := "High-value transaction requires enhanced scrutiny; Third-party data sharing must be explicitly consented to. Multiple PSD3 compliance concerns identified."

	t.Run("rejection of third-party high value", func(t *testing.T) {
		notes := Notes(
			domain.NewValidationResult(domain.DecisionReject, 0.85, reasoning, domain.RiskHigh, false),
			domain.ConsentTrigger{
				Type:               domain.TriggerThirdPartyDataSharing,
				RawType:            "third_party_sharing",
				UserID:             "user_0042",
				Amount:             7500,
				Purpose:            "investment_advice",
				ThirdPartyProvider: "InvestmentApp",
			},
		)

		assert.Equal(t, []string{
			"❌ AI Assessment: Third Party Sharing Request",
			"• Confidence: 85.0% | Amount: €7,500 | Purpose: investment_advice",
			"• Provider: InvestmentApp | User: user_0042",
			"• PSD3 Compliance: ❌ Request does not meet all regulatory requirements",
			"• High-Value Review: ❌ €7,500 requires additional compliance measures",
			"• Third-Party Access: ❌ Additional verification needed for InvestmentApp",
			"• Remediation: Review consent scope and obtain explicit user confirmation",
			"• AI Analysis: High-value transaction requires enhanced scrutiny; Third-party data sharing must be explicitly consented to. Multiple PSD3 compliance concerns identified.",
		}, notes)
	})

	t.Run("approval with insights", func(t *testing.T) {
		long := "The stated purpose is narrow and specific. The user can withdraw at any time. Everything else checks out without concern."
		notes := Notes(
			domain.NewValidationResult(domain.DecisionApprove, 0.9, long, domain.RiskLow, true),
			domain.ConsentTrigger{Type: domain.TriggerOther, Amount: 120.5, ThirdPartyProvider: "bank"},
		)

		assert.Equal(t, "✅ AI Assessment: Other Request", notes[0])
		assert.Equal(t, "• Confidence: 90.0% | Amount: €120.50 | Purpose: unspecified", notes[1])
		assert.Contains(t, notes, "• PSD3 Compliance: ✅ Request meets regulatory requirements")
		assert.Contains(t, notes, "• Data Processing: ✅ Purpose limitation and minimization applied")
		assert.Contains(t, notes, "• Purpose Clarity: AI validated processing purpose specification")
		assert.Contains(t, notes, "• Withdrawal Rights: AI confirmed revocation mechanisms available")
		assert.Contains(t, notes, "• AI Analysis: The stated purpose is narrow and specific. The user can withdraw at any time.")
		for _, n := range notes {
			assert.NotContains(t, n, "Third-Party Access")
			assert.NotContains(t, n, "High-Value Review")
		}
	})
}

func TestLeadingSentences(t *testing.T) {
	assert.Equal(t, "One. Two.", leadingSentences("One. Two. Three.", 2))
	assert.Equal(t, "Only.", leadingSentences(".Only", 2))
	assert.Equal(t, "", leadingSentences("...", 2))
}
