package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/application/usecase"
	"github.com/bibbank/decision-engine/internal/domain/model"
)

func TestQuoteAffordability_Execute(t *testing.T) {
	uc := usecase.NewQuoteAffordabilityUseCase()

	t.Run("prices a loan at the scoring rate", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.QuoteAffordabilityRequest{
			Amount:        100_000,
			TenureMonths:  12,
			MonthlyIncome: 50_000,
		})

		require.NoError(t, err)
		assert.Equal(t, 8884.88, resp.EMI)
		assert.Equal(t, 6618.56, resp.TotalInterest)
		assert.Equal(t, 106618.56, resp.TotalPayable)
		assert.Equal(t, 0.1777, resp.DTIRatio)
		assert.Equal(t, "excellent", resp.DTIStatus)
		assert.Equal(t, 6, resp.SuggestedTenureMonth)
	})

	t.Run("custom target ratio", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.QuoteAffordabilityRequest{
			Amount:        1_000_000,
			TenureMonths:  24,
			MonthlyIncome: 100_000,
			TargetDTI:     0.35,
		})

		require.NoError(t, err)
		assert.Equal(t, 34, resp.SuggestedTenureMonth)
		assert.Equal(t, "fair", resp.DTIStatus)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			req   dto.QuoteAffordabilityRequest
			field string
		}{
			{"zero amount", dto.QuoteAffordabilityRequest{TenureMonths: 12, MonthlyIncome: 1}, "amount"},
			{"zero tenure", dto.QuoteAffordabilityRequest{Amount: 1, MonthlyIncome: 1}, "tenure_months"},
			{"zero income", dto.QuoteAffordabilityRequest{Amount: 1, TenureMonths: 12}, "monthly_income"},
			{"income too small for the loan", dto.QuoteAffordabilityRequest{Amount: 1e300, TenureMonths: 12, MonthlyIncome: 1e-300}, "monthly_income"},
			{"target above one", dto.QuoteAffordabilityRequest{Amount: 1, TenureMonths: 12, MonthlyIncome: 1, TargetDTI: 1.5}, "target_dti"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := uc.Execute(context.Background(), tt.req)

				var domainErr *model.DomainError
				require.True(t, errors.As(err, &domainErr))
				assert.True(t, errors.Is(err, model.ErrValidation))
				assert.Equal(t, tt.field, domainErr.Field)
			})
		}
	})
}
