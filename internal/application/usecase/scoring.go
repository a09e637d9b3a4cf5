package usecase

import (
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/service"
)

var tracer = otel.Tracer("github.com/bibbank/decision-engine/internal/application/usecase")

// runScorer invokes the scorer and converts a panic inside the model into a
// ScoringError. Nothing has been persisted at this point, so the caller can
// simply return the error.
func runScorer(scorer service.Scorer, features model.ExtractedFeatures) (result model.ScoringResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = model.NewScoringError(fmt.Errorf("%s model panicked: %v", scorer.Model(), r))
		}
	}()
	return scorer.Score(features), nil
}

func toScoreResponse(features model.ExtractedFeatures, result model.ScoringResult) dto.ScoreApplicationResponse {
	n := result.Features
	return dto.ScoreApplicationResponse{
		Score:    result.Score,
		Decision: result.Decision.String(),
		Reasons:  result.Reasons,
		Model:    result.Model.String(),
		EMI:      features.EMI,
		DTIRatio: features.DTIRatio,
		Features: dto.NormalizedFeaturesResponse{
			CreditScoreNormalized:      n.CreditScoreNormalized,
			DTIRatio:                   n.DTIRatio,
			DTIRatioInverted:           n.DTIRatioInverted,
			EMIToIncome:                n.EMIToIncome,
			EmploymentLengthNormalized: n.EmploymentLengthNormalized,
			AmountVsIncome:             n.AmountVsIncome,
		},
	}
}

func toDecisionResponse(rec model.DecisionRecord) dto.DecisionResponse {
	return dto.DecisionResponse{
		ID:        rec.ID(),
		LoanID:    rec.LoanID(),
		Decision:  rec.Decision().String(),
		Score:     rec.Score(),
		Reasons:   rec.Reasons(),
		InputHash: rec.InputHash(),
		CreatedAt: rec.CreatedAt(),
	}
}
