package domain

// AuditEntry is one durable record of a validated trigger. Entries are never
// mutated after creation.
type AuditEntry struct {
	Timestamp        Timestamp        `json:"timestamp"`
	ValidationResult ValidationResult `json:"validation_result"`
	TriggerData      ConsentTrigger   `json:"trigger_data"`
	SourceAgent      string           `json:"source_agent"`
	RegulatoryNotes  []string         `json:"regulatory_notes"`
}
