package decision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"choreographer/internal/domain"
	"choreographer/pkg/platform/circuit"
	"choreographer/pkg/testutil"
)

type stubReasoner struct {
	response string
	err      error
	calls    int
	delay    time.Duration
}

func (r *stubReasoner) Generate(ctx context.Context, _ string) (string, error) {
	r.calls++
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.response, r.err
}

type EngineSuite struct {
	suite.Suite
	ctx      context.Context
	reasoner *stubReasoner
	engine   *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.reasoner = &stubReasoner{}
	s.engine = NewEngine(testutil.DiscardLogger(),
		WithDelegated(NewReasoningStrategy(s.reasoner, time.Second)),
		WithBreaker(circuit.New("reasoning", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))),
	)
}

var highValueThirdParty = domain.ConsentTrigger{
	Type:               domain.TriggerHighValueTransaction,
	Amount:             8000,
	ThirdPartyProvider: "FinTechCorp",
}

func (s *EngineSuite) TestDelegatedSuccess() {
	s.reasoner.response = "DECISION: APPROVE\nCONFIDENCE: 0.8\nREASONING: fine\nRISK_LEVEL: LOW"

	r := s.engine.Evaluate(s.ctx, highValueThirdParty)

	s.Equal(domain.DecisionApprove, r.Decision)
	s.True(r.AIProcessed)
	s.Equal("fine", r.Reasoning)
}

func (s *EngineSuite) TestFallbackOnError() {
	s.reasoner.err = errors.New("quota exceeded")

	r := s.engine.Evaluate(s.ctx, highValueThirdParty)

	s.Equal(EvaluateRules(highValueThirdParty), r)
	s.False(r.AIProcessed)
}

func (s *EngineSuite) TestFallbackOnUnparsableResponse() {
	s.reasoner.response = "I'd rather not say."

	r := s.engine.Evaluate(s.ctx, highValueThirdParty)

	s.Equal(domain.DecisionReject, r.Decision)
	s.Equal(0.85, r.Confidence)
	s.False(r.AIProcessed)
}

func (s *EngineSuite) TestFallbackOnTimeout() {
	s.reasoner.delay = time.Minute
	s.engine = NewEngine(testutil.DiscardLogger(),
		WithDelegated(NewReasoningStrategy(s.reasoner, 20*time.Millisecond)),
	)

	r := s.engine.Evaluate(s.ctx, highValueThirdParty)

	s.False(r.AIProcessed)
	s.Equal(domain.DecisionReject, r.Decision)
}

func (s *EngineSuite) TestBreakerSkipsDelegatedAfterRepeatedFailures() {
	s.reasoner.err = errors.New("unavailable")

	for i := 0; i < 5; i++ {
		s.engine.Evaluate(s.ctx, highValueThirdParty)
	}

	s.Equal(2, s.reasoner.calls, "open breaker stops calling the reasoner")
}

func TestEngine_RulesOnly(t *testing.T) {
	e := NewEngine(testutil.DiscardLogger())
	r := e.Evaluate(context.Background(), domain.ConsentTrigger{Amount: 10, ThirdPartyProvider: "bank"})

	require.Equal(t, domain.DecisionApprove, r.Decision)
	assert.Equal(t, domain.RiskLow, r.RiskLevel)
	assert.False(t, r.AIProcessed)
}
