package decision

import (
	"fmt"
	"strings"

	"choreographer/internal/domain"
)

// BuildPrompt renders the PSD3 compliance prompt for a trigger. The response
// format it requests is what ParseReasoning understands.
func BuildPrompt(t domain.ConsentTrigger) string {
	scope := "Not specified"
	if len(t.DataScope) > 0 {
		scope = strings.Join(t.DataScope, ", ")
	}
	purpose := t.Purpose
	if purpose == "" {
		purpose = "unknown"
	}
	userID := t.UserID
	if userID == "" {
		userID = "unknown"
	}

	var b strings.Builder
	b.WriteString("You are an expert PSD3 (Payment Services Directive 3) compliance validator for open banking consent requests.\n\n")
	b.WriteString("Analyze the following consent request for PSD3 compliance:\n\n")
	b.WriteString("Consent Request Details:\n")
	fmt.Fprintf(&b, "- Type: %s\n", t.DisplayType())
	fmt.Fprintf(&b, "- Amount: €%s\n", formatAmount(t.Amount))
	fmt.Fprintf(&b, "- Purpose: %s\n", purpose)
	fmt.Fprintf(&b, "- Third Party Provider: %s\n", t.ThirdPartyProvider)
	fmt.Fprintf(&b, "- Data Scope: %s\n", scope)
	fmt.Fprintf(&b, "- User ID: %s\n\n", userID)
	b.WriteString("PSD3 Key Requirements to Check:\n")
	b.WriteString("1. **Explicit Consent**: Must be clear, specific, and informed\n")
	b.WriteString("2. **Purpose Limitation**: Data processing must be limited to specified purposes\n")
	b.WriteString("3. **Data Minimization**: Only necessary data should be shared\n")
	b.WriteString("4. **Right to Withdraw**: User must be able to withdraw consent easily\n")
	b.WriteString("5. **Transparency**: Clear information about data processing\n")
	fmt.Fprintf(&b, "6. **High-Value Transactions**: Special scrutiny for amounts >€%d\n\n", HighValueThreshold)
	b.WriteString("Please analyze this request and provide:\n")
	b.WriteString("1. Decision: APPROVE or REJECT\n")
	b.WriteString("2. Confidence Level: 0.0 to 1.0 (how certain you are)\n")
	b.WriteString("3. Detailed Reasoning: Explain your decision based on PSD3 requirements\n")
	b.WriteString("4. Risk Level: LOW, MEDIUM, or HIGH\n\n")
	b.WriteString("Format your response as:\n")
	b.WriteString("DECISION: [APPROVE/REJECT]\n")
	b.WriteString("CONFIDENCE: [0.0-1.0]\n")
	b.WriteString("REASONING: [Detailed explanation]\n")
	b.WriteString("RISK_LEVEL: [LOW/MEDIUM/HIGH]\n")
	return b.String()
}

func formatAmount(a float64) string {
	if a == float64(int64(a)) {
		return fmt.Sprintf("%d", int64(a))
	}
	return fmt.Sprintf("%.2f", a)
}
