package llm

import (
	"context"
	"time"

	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/schema"
)

// DegradedMessage is returned when every provider in the chain fails.
// It is a user-facing answer, not an error.
const DegradedMessage = "Sorry, I encountered an error while processing your medical query. Please try again shortly, and seek professional medical care if your question is urgent."

// Gateway walks an ordered provider chain until one completes. Each
// attempt gets its own timeout.
type Gateway struct {
	providers      []Provider
	attemptTimeout time.Duration
	log            logger.Logger
}

// NewGateway creates a gateway over the given chain. The first
// provider is the primary.
func NewGateway(providers []Provider, attemptTimeout time.Duration) *Gateway {
	if attemptTimeout <= 0 {
		attemptTimeout = 30 * time.Second
	}
	return &Gateway{
		providers:      providers,
		attemptTimeout: attemptTimeout,
		log:            logger.NewWithComponent("llm-gateway"),
	}
}

// Generate runs the chain. The bool reports real success; when false
// the result text is the degraded message.
func (g *Gateway) Generate(ctx context.Context, req Request) (schema.ModelResult, bool) {
	for _, p := range g.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
		res, err := p.Complete(attemptCtx, req)
		cancel()
		if err == nil {
			return res, true
		}
		g.log.Warnf("provider %s failed, trying next: %v", p.Name(), err)
	}
	g.log.Error("all generation providers failed")
	return schema.ModelResult{Text: DegradedMessage, Provider: "none"}, false
}
