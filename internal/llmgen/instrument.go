package llmgen

import (
	"context"
	"errors"
	"time"

	"github.com/akozyrev/profvibe/internal/observability"
)

// instrumentedGenerator records latency and failure counters around an inner
// generator.
type instrumentedGenerator struct {
	inner    Generator
	provider string
	metrics  *observability.Metrics
}

// Instrument wraps gen so every call feeds the generation metrics, labeled
// with the provider name.
func Instrument(gen Generator, provider string, metrics *observability.Metrics) Generator {
	return &instrumentedGenerator{inner: gen, provider: provider, metrics: metrics}
}

func (g *instrumentedGenerator) Generate(ctx context.Context, req GenerateRequest, onDelta DeltaHandler) (string, error) {
	start := time.Now()
	out, err := g.inner.Generate(ctx, req, onDelta)
	g.metrics.ObserveGenerationLatency(time.Since(start))
	if err != nil {
		g.metrics.GenerationErrors.WithLabelValues(g.provider, errorKind(err)).Inc()
	}
	return out, err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case IsMalformedOutput(err):
		return "malformed"
	default:
		return "other"
	}
}
