package decision

import (
	"context"
	"strings"

	"choreographer/internal/domain"
)

// HighValueThreshold is the amount above which a trigger receives enhanced
// scrutiny.
const HighValueThreshold = 5000

const lowRiskReasoning = "Low-risk transaction compliant with PSD3 requirements."

type rule struct {
	weight      int
	description string
	applies     func(domain.ConsentTrigger) bool
}

var rules = []rule{
	{
		weight:      3,
		description: "High-value transaction requires enhanced scrutiny",
		applies:     func(t domain.ConsentTrigger) bool { return t.Amount > HighValueThreshold },
	},
	{
		weight:      2,
		description: "International transfer requires additional verification",
		applies: func(t domain.ConsentTrigger) bool {
			p := strings.ToLower(t.Purpose)
			return strings.Contains(p, "international") || strings.Contains(p, "cross-border")
		},
	},
	{
		weight:      1,
		description: "Third-party data sharing must be explicitly consented to",
		applies:     func(t domain.ConsentTrigger) bool { return t.HasThirdParty() },
	},
	{
		weight:      1,
		description: "Account activity review requires user confirmation",
		applies:     func(t domain.ConsentTrigger) bool { return t.Type == domain.TriggerAccountActivityReview },
	},
}

// RuleStrategy is the deterministic PSD3 risk scorer. It is total.
type RuleStrategy struct{}

func (RuleStrategy) Name() string { return StrategyRules }

func (RuleStrategy) Evaluate(_ context.Context, trigger domain.ConsentTrigger) (domain.ValidationResult, error) {
	return EvaluateRules(trigger), nil
}

// RiskScore sums the weights of every rule the trigger matches and returns
// the matching descriptions in rule order.
func RiskScore(trigger domain.ConsentTrigger) (int, []string) {
	score := 0
	var reasons []string
	for _, r := range rules {
		if r.applies(trigger) {
			score += r.weight
			reasons = append(reasons, r.description)
		}
	}
	return score, reasons
}

// EvaluateRules maps the risk score onto a verdict:
// >=4 REJECT/0.85/HIGH, 2-3 APPROVE/0.75/MEDIUM, otherwise APPROVE/0.95/LOW.
func EvaluateRules(trigger domain.ConsentTrigger) domain.ValidationResult {
	score, reasons := RiskScore(trigger)
	joined := strings.Join(reasons, "; ")

	switch {
	case score >= 4:
		return domain.NewValidationResult(domain.DecisionReject, 0.85,
			joined+". Multiple PSD3 compliance concerns identified.", domain.RiskHigh, false)
	case score >= 2:
		return domain.NewValidationResult(domain.DecisionApprove, 0.75,
			joined+". Approved with conditions per PSD3 requirements.", domain.RiskMedium, false)
	default:
		return domain.NewValidationResult(domain.DecisionApprove, 0.95, lowRiskReasoning, domain.RiskLow, false)
	}
}
