package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGeminiReasoner_RequiresKey(t *testing.T) {
	r, err := NewGeminiReasoner(context.Background(), "", "")
	assert.Error(t, err)
	assert.Nil(t, r)
}
