package decision

import (
	"errors"
	"strconv"
	"strings"

	"choreographer/internal/domain"
)

// ErrUnparsable means a reasoning response carried no DECISION line.
var ErrUnparsable = errors.New("reasoning response has no DECISION line")

// ParseReasoning reads the labelled lines of a delegated reasoning response.
// Keys are case-sensitive prefixes of trimmed lines and the first colon
// splits key from value; later duplicates win.
func ParseReasoning(response string) (domain.ValidationResult, error) {
	var (
		decision    = domain.DecisionReject
		confidence  = domain.DefaultConfidence
		reasoning   = strings.TrimSpace(response)
		risk        = domain.RiskMedium
		sawDecision bool
	)

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "DECISION":
			sawDecision = true
			if d, ok := domain.ParseDecision(value); ok {
				decision = d
			} else {
				decision = domain.DecisionReject
			}
		case "CONFIDENCE":
			if c, err := strconv.ParseFloat(value, 64); err == nil {
				confidence = c
			} else {
				confidence = domain.DefaultConfidence
			}
		case "REASONING":
			reasoning = value
		case "RISK_LEVEL":
			if r, ok := domain.ParseRiskLevel(value); ok {
				risk = r
			} else {
				risk = domain.RiskMedium
			}
		}
	}

	if !sawDecision {
		return domain.ValidationResult{}, ErrUnparsable
	}
	return domain.NewValidationResult(decision, confidence, reasoning, risk, true), nil
}
