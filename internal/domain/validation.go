package domain

import (
	"math"
	"strings"
)

// Decision is the verdict for a consent trigger.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// ParseDecision accepts APPROVE or REJECT in any case.
func ParseDecision(s string) (Decision, bool) {
	switch d := Decision(strings.ToUpper(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, true
	}
	return "", false
}

// RiskLevel summarises the severity behind a verdict.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ParseRiskLevel accepts LOW, MEDIUM or HIGH in any case.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch r := RiskLevel(strings.ToUpper(strings.TrimSpace(s))); r {
	case RiskLow, RiskMedium, RiskHigh:
		return r, true
	}
	return "", false
}

// DefaultConfidence is used when a confidence value is missing or unusable.
const DefaultConfidence = 0.5

// ClampConfidence bounds c to [0,1]; NaN becomes DefaultConfidence.
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return DefaultConfidence
	}
	return math.Max(0, math.Min(1, c))
}

// ValidationResult is the decision engine's verdict.
// Invariants: Valid == (Decision == APPROVE), Confidence in [0,1].
type ValidationResult struct {
	Decision    Decision  `json:"decision"`
	Confidence  float64   `json:"confidence"`
	Reasoning   string    `json:"reasoning"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Valid       bool      `json:"valid"`
	AIProcessed bool      `json:"ai_processed"`
}

// NewValidationResult builds a result that satisfies the invariants.
func NewValidationResult(decision Decision, confidence float64, reasoning string, risk RiskLevel, aiProcessed bool) ValidationResult {
	return ValidationResult{
		Decision:    decision,
		Confidence:  confidence,
		Reasoning:   reasoning,
		RiskLevel:   risk,
		AIProcessed: aiProcessed,
	}.Normalized()
}

// Normalized re-establishes the invariants on a result received from the
// wire. Unknown decisions become REJECT and unknown risk levels MEDIUM.
func (r ValidationResult) Normalized() ValidationResult {
	if d, ok := ParseDecision(string(r.Decision)); ok {
		r.Decision = d
	} else {
		r.Decision = DecisionReject
	}
	if lvl, ok := ParseRiskLevel(string(r.RiskLevel)); ok {
		r.RiskLevel = lvl
	} else {
		r.RiskLevel = RiskMedium
	}
	r.Confidence = ClampConfidence(r.Confidence)
	r.Valid = r.Decision == DecisionApprove
	return r
}
