package a2a

import (
	"context"

	"choreographer/internal/domain"
)

// DeliveryStatus distinguishes the three outcomes of a send.
type DeliveryStatus string

const (
	StatusDelivered   DeliveryStatus = "delivered"
	StatusRejected    DeliveryStatus = "rejected"
	StatusUnreachable DeliveryStatus = "unreachable"
)

// Delivery is the result of a single send attempt. MessageID is always set,
// whatever the outcome.
type Delivery struct {
	MessageID string
	Status    DeliveryStatus
	Reason    string
	Err       error
}

// Delivered reports whether the receiver accepted the message.
func (d Delivery) Delivered() bool {
	return d.Status == StatusDelivered
}

//go:generate mockgen -source=delivery.go -destination=mocks/sender-mocks.go -package=mocks Sender

// Sender delivers one message to another agent. It never retries; callers
// decide what a failed Delivery means for them.
type Sender interface {
	Send(ctx context.Context, to domain.AgentName, msg Message, correlationID string) Delivery
}
