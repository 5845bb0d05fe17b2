// Package domain holds the value types exchanged by the three agents: the
// consent trigger, the validation verdict and the audit entry.
package domain

// AgentName identifies one of the three fixed roles.
type AgentName string

const (
	AgentMonitoring AgentName = "MonitoringAgent"
	AgentValidation AgentName = "ValidationAgent"
	AgentAudit      AgentName = "AuditAgent"
)

func (a AgentName) String() string { return string(a) }

// IsKnown reports whether a is one of the three roles.
func (a AgentName) IsKnown() bool {
	switch a {
	case AgentMonitoring, AgentValidation, AgentAudit:
		return true
	}
	return false
}
