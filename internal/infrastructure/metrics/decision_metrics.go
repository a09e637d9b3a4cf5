package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/bibbank/decision-engine"

// DecisionMetrics implements port.DecisionMetrics on an OpenTelemetry meter.
type DecisionMetrics struct {
	decisions metric.Int64Counter
	scores    metric.Float64Histogram
}

// NewDecisionMetrics registers the decision instruments on provider.
func NewDecisionMetrics(provider metric.MeterProvider) (*DecisionMetrics, error) {
	meter := provider.Meter(meterName)

	decisions, err := meter.Int64Counter("loan_decisions",
		metric.WithDescription("Loan decisions served, by model, outcome and cache hit."),
	)
	if err != nil {
		return nil, fmt.Errorf("create decisions counter: %w", err)
	}

	scores, err := meter.Float64Histogram("loan_decision_score",
		metric.WithDescription("Distribution of freshly computed decision scores."),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.7, 0.8, 0.9, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("create score histogram: %w", err)
	}

	return &DecisionMetrics{decisions: decisions, scores: scores}, nil
}

func (m *DecisionMetrics) RecordDecision(ctx context.Context, model, decision string, score float64, cached bool) {
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("decision", decision),
		attribute.Bool("cached", cached),
	)
	m.decisions.Add(ctx, 1, attrs)
	if !cached {
		m.scores.Record(ctx, score, metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("decision", decision),
		))
	}
}
