package audit

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"choreographer/internal/domain"
)

// Reasoning longer than this is treated as a substantive justification and
// formatted into structured notes.
const substantialReasoning = 50

const summaryThreshold = 100

// Notes derives regulatory notes for a verdict.
func Notes(result domain.ValidationResult, trigger domain.ConsentTrigger) []string {
	if len(result.Reasoning) > substantialReasoning {
		return assessmentNotes(result, trigger)
	}
	return templateNotes(result, trigger)
}

func assessmentNotes(result domain.ValidationResult, trigger domain.ConsentTrigger) []string {
	consentType := trigger.DisplayType()
	purpose := trigger.Purpose
	if purpose == "" {
		purpose = "unspecified"
	}
	userID := trigger.UserID
	if userID == "" {
		userID = "unknown"
	}
	provider := trigger.ThirdPartyProvider
	amount := formatEuro(trigger.Amount)
	involvesThirdParty := strings.Contains(consentType, "third_party") || trigger.HasThirdParty()

	icon := "❌"
	if result.Decision == domain.DecisionApprove {
		icon = "✅"
	}
	notes := []string{
		fmt.Sprintf("%s AI Assessment: %s Request", icon, cases.Title(language.English).String(strings.ReplaceAll(consentType, "_", " "))),
		fmt.Sprintf("• Confidence: %s | Amount: €%s | Purpose: %s", formatPercent(result.Confidence), amount, purpose),
		fmt.Sprintf("• Provider: %s | User: %s", provider, userID),
	}

	if result.Decision == domain.DecisionApprove {
		notes = append(notes, "• PSD3 Compliance: ✅ Request meets regulatory requirements")
		if trigger.Amount > 5000 {
			notes = append(notes, fmt.Sprintf("• High-Value Review: ✅ €%s transaction approved under enhanced scrutiny", amount))
		}
		if involvesThirdParty {
			notes = append(notes, fmt.Sprintf("• Third-Party Access: ✅ Explicit consent granted for %s", provider))
		}
		notes = append(notes, "• Data Processing: ✅ Purpose limitation and minimization applied")
	} else {
		notes = append(notes, "• PSD3 Compliance: ❌ Request does not meet all regulatory requirements")
		if trigger.Amount > 5000 {
			notes = append(notes, fmt.Sprintf("• High-Value Review: ❌ €%s requires additional compliance measures", amount))
		}
		if involvesThirdParty {
			notes = append(notes, fmt.Sprintf("• Third-Party Access: ❌ Additional verification needed for %s", provider))
		}
		notes = append(notes, "• Remediation: Review consent scope and obtain explicit user confirmation")
	}

	lower := strings.ToLower(result.Reasoning)
	if strings.Contains(lower, "purpose") {
		notes = append(notes, "• Purpose Clarity: AI validated processing purpose specification")
	}
	if strings.Contains(lower, "withdraw") || strings.Contains(lower, "revoke") {
		notes = append(notes, "• Withdrawal Rights: AI confirmed revocation mechanisms available")
	}
	if len(result.Reasoning) > summaryThreshold {
		if summary := leadingSentences(result.Reasoning, 2); summary != "" {
			notes = append(notes, "• AI Analysis: "+summary)
		}
	}
	return notes
}

func templateNotes(result domain.ValidationResult, trigger domain.ConsentTrigger) []string {
	confidence := "AI validation confidence: " + formatPercent(result.Confidence)

	if result.Valid {
		notes := []string{
			"PSD3 Article 64 compliance confirmed",
			"Explicit consent obtained for data processing",
			"Data minimization principles applied",
			"Right to withdraw consent maintained",
			"Transparent privacy notice provided",
			confidence,
		}
		switch trigger.Type {
		case domain.TriggerHighValueTransaction:
			notes = append(notes, "High-value transaction consent validated")
		case domain.TriggerInternationalTransfer:
			notes = append(notes, "Cross-border transfer consent confirmed")
		case domain.TriggerThirdPartyDataSharing:
			notes = append(notes, "Third-party data sharing consent verified")
		case domain.TriggerAccountActivityReview:
			notes = append(notes, "Account activity consent review completed")
		}
		return notes
	}

	reason := strings.TrimSpace(result.Reasoning)
	if reason == "" {
		reason = "Validation failed"
	}
	notes := []string{
		"REJECTED: " + reason,
		"PSD3 Article 64: Consent must be specific and informed",
		"Data protection impact assessment recommended",
		"User notified of rejection with reasoning",
		"Alternative narrower consent scope suggested",
		confidence,
	}
	return appendConfidenceWarning(notes, result.Confidence)
}

func appendConfidenceWarning(notes []string, confidence float64) []string {
	switch {
	case confidence < 0.5:
		return append(notes, "CRITICAL: Low confidence validation - manual review required")
	case confidence < 0.7:
		return append(notes, "WARNING: Moderate confidence - additional verification recommended")
	}
	return notes
}

// leadingSentences joins the first n period-separated fragments.
func leadingSentences(text string, n int) string {
	parts := strings.Split(text, ".")
	if len(parts) > n {
		parts = parts[:n]
	}
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, ". ") + "."
}

func formatPercent(c float64) string {
	return fmt.Sprintf("%.1f%%", c*100)
}

// formatEuro groups thousands; whole amounts print without decimals.
func formatEuro(a float64) string {
	p := message.NewPrinter(language.English)
	if a == float64(int64(a)) {
		return p.Sprintf("%d", int64(a))
	}
	return p.Sprintf("%.2f", a)
}
