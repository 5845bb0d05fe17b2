package decision

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"choreographer/internal/domain"
)

var triggerTypes = []domain.TriggerType{
	domain.TriggerHighValueTransaction,
	domain.TriggerInternationalTransfer,
	domain.TriggerThirdPartyDataSharing,
	domain.TriggerAccountActivityReview,
	domain.TriggerOther,
}

func genTrigger() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0, 20000),
		gen.OneConstOf("", "loan", "international transfer", "cross-border", "investment_advice"),
		gen.OneConstOf("bank", "", "FinTechCorp", "InsuranceHub"),
		gen.IntRange(0, len(triggerTypes)-1),
	).Map(func(v []any) domain.ConsentTrigger {
		provider := v[2].(string)
		if provider == "" {
			provider = domain.DefaultProvider
		}
		return domain.ConsentTrigger{
			Amount:             v[0].(float64),
			Purpose:            v[1].(string),
			ThirdPartyProvider: provider,
			Type:               triggerTypes[v[3].(int)],
		}
	})
}

// Property: a verdict is valid exactly when it approves, and its confidence
// is one of the three fixed values.
func TestEvaluateRulesInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("valid iff approve", prop.ForAll(
		func(trigger domain.ConsentTrigger) bool {
			r := EvaluateRules(trigger)
			return r.Valid == (r.Decision == domain.DecisionApprove) && !r.AIProcessed
		},
		genTrigger(),
	))

	properties.Property("score maps onto verdict", prop.ForAll(
		func(trigger domain.ConsentTrigger) bool {
			score, _ := RiskScore(trigger)
			r := EvaluateRules(trigger)
			switch {
			case score >= 4:
				return r.Decision == domain.DecisionReject && r.Confidence == 0.85 && r.RiskLevel == domain.RiskHigh
			case score >= 2:
				return r.Decision == domain.DecisionApprove && r.Confidence == 0.75 && r.RiskLevel == domain.RiskMedium
			default:
				return r.Decision == domain.DecisionApprove && r.Confidence == 0.95 && r.RiskLevel == domain.RiskLow
			}
		},
		genTrigger(),
	))

	properties.Property("high value with a third party always rejects", prop.ForAll(
		func(trigger domain.ConsentTrigger) bool {
			trigger.Amount += 5000.01
			trigger.ThirdPartyProvider = "FinTechCorp"
			return EvaluateRules(trigger).Decision == domain.DecisionReject
		},
		genTrigger(),
	))

	properties.TestingRun(t)
}

// Property: ParseReasoning never yields a confidence outside [0,1].
func TestParseReasoningConfidenceBounds(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("confidence is clamped", prop.ForAll(
		func(c float64) bool {
			r, err := ParseReasoning("DECISION: APPROVE\nCONFIDENCE: " + formatFloat(c))
			return err == nil && r.Confidence >= 0 && r.Confidence <= 1
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}
