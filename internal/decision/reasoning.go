package decision

import (
	"context"
	"fmt"
	"time"

	"choreographer/internal/domain"
)

// DefaultReasoningTimeout bounds one delegated reasoning call.
const DefaultReasoningTimeout = 20 * time.Second

// Reasoner is an external text-generation capability.
type Reasoner interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ReasoningStrategy delegates evaluation to a Reasoner.
type ReasoningStrategy struct {
	reasoner Reasoner
	timeout  time.Duration
}

// NewReasoningStrategy wraps reasoner. A non-positive timeout uses the default.
func NewReasoningStrategy(reasoner Reasoner, timeout time.Duration) *ReasoningStrategy {
	if timeout <= 0 {
		timeout = DefaultReasoningTimeout
	}
	return &ReasoningStrategy{reasoner: reasoner, timeout: timeout}
}

func (s *ReasoningStrategy) Name() string { return StrategyReasoning }

func (s *ReasoningStrategy) Evaluate(ctx context.Context, trigger domain.ConsentTrigger) (domain.ValidationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.reasoner.Generate(ctx, BuildPrompt(trigger))
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("generate: %w", err)
	}
	result, err := ParseReasoning(response)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return result, nil
}
