package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"choreographer/internal/domain"
)

// Producer writes keyed records to a topic.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
}

// KafkaPublisher encodes entries as JSON keyed by trigger id.
type KafkaPublisher struct {
	producer Producer
}

// NewKafkaPublisher wraps producer.
func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, entry domain.AuditEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	return p.producer.Produce(ctx, []byte(entry.TriggerData.TriggerID), value)
}
