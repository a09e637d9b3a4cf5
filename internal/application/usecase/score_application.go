package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/service"
)

// ScoreApplicationUseCase scores raw application data without touching any
// store. It is the pure entry point to the scoring pipeline.
type ScoreApplicationUseCase struct {
	scorer service.Scorer
}

// NewScoreApplicationUseCase wires dependencies.
func NewScoreApplicationUseCase(scorer service.Scorer) *ScoreApplicationUseCase {
	return &ScoreApplicationUseCase{scorer: scorer}
}

// Execute validates and scores the application.
func (uc *ScoreApplicationUseCase) Execute(
	ctx context.Context,
	req dto.ScoreApplicationRequest,
) (dto.ScoreApplicationResponse, error) {
	_, span := tracer.Start(ctx, "ScoreApplication",
		trace.WithAttributes(attribute.String("scoring.model", uc.scorer.Model().String())))
	defer span.End()

	features, err := service.ExtractFeatures(model.LoanFeatures{
		CreditScore:     req.CreditScore,
		MonthlyIncome:   req.MonthlyIncome,
		ExistingDebts:   req.ExistingDebts,
		Amount:          req.Amount,
		TenureMonths:    req.TenureMonths,
		EmploymentYears: req.EmploymentYears,
		Purpose:         req.Purpose,
	})
	if err != nil {
		return dto.ScoreApplicationResponse{}, err
	}

	result, err := runScorer(uc.scorer, features)
	if err != nil {
		span.RecordError(err)
		return dto.ScoreApplicationResponse{}, err
	}

	span.SetAttributes(
		attribute.String("decision", result.Decision.String()),
		attribute.Float64("score", result.Score),
	)
	return toScoreResponse(features, result), nil
}
