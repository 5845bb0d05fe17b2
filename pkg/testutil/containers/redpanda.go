//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/redpanda"
)

const redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v23.3.3"

// Redpanda is a Kafka-compatible broker that creates topics on first write.
type Redpanda struct {
	Broker string
}

// NewRedpandaContainer starts a broker for the audit export tests.
func NewRedpandaContainer(t *testing.T) *Redpanda {
	t.Helper()
	ctx := context.Background()

	c, err := redpanda.Run(ctx, redpandaImage, redpanda.WithAutoCreateTopics())
	must(t, err, "start redpanda")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	broker, err := c.KafkaSeedBroker(ctx)
	must(t, err, "kafka seed broker")
	return &Redpanda{Broker: broker}
}
