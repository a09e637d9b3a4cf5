package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/decision-engine/internal/domain/service"
)

func TestCalculateEMI(t *testing.T) {
	tests := []struct {
		name       string
		principal  float64
		annualRate float64
		tenure     int
		want       float64
	}{
		{name: "12% over 24 months", principal: 1_000_000, annualRate: 0.12, tenure: 24, want: 47073.47},
		{name: "12% over 60 months", principal: 1_000_000, annualRate: 0.12, tenure: 60, want: 22244.45},
		{name: "12% over 12 months", principal: 100_000, annualRate: 0.12, tenure: 12, want: 8884.88},
		{name: "zero rate splits evenly", principal: 120_000, annualRate: 0, tenure: 12, want: 10_000},
		{name: "zero rate rounds to cents", principal: 100, annualRate: 0, tenure: 3, want: 33.33},
		{name: "non-positive principal", principal: 0, annualRate: 0.12, tenure: 12, want: 0},
		{name: "non-positive tenure", principal: 1000, annualRate: 0.12, tenure: 0, want: 0},
		{name: "overflowing tenure converges on interest only", principal: 100_000, annualRate: 0.12, tenure: 100_000, want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.CalculateEMI(tt.principal, tt.annualRate, tt.tenure))
		})
	}
}

func TestCalculateDTI(t *testing.T) {
	t.Run("ratio rounded to four places", func(t *testing.T) {
		assert.Equal(t, 0.3333, service.CalculateDTI(1, 3))
		assert.Equal(t, 0.1, service.CalculateDTI(10_000, 100_000))
	})

	t.Run("zero income is worst case", func(t *testing.T) {
		assert.Equal(t, 1.0, service.CalculateDTI(500, 0))
		assert.Equal(t, 1.0, service.CalculateDTI(500, -10))
	})

	t.Run("negative emi yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, service.CalculateDTI(-1, 0))
		assert.Equal(t, 0.0, service.CalculateDTI(-1, 1000))
	})
}

func TestCalculateDTI_NonFiniteRatioDoesNotPanic(t *testing.T) {
	var got float64
	assert.NotPanics(t, func() { got = service.CalculateDTI(1e300, 1e-10) })
	assert.True(t, math.IsInf(got, 1))
}

func TestCalculateTotalInterest(t *testing.T) {
	emi := service.CalculateEMI(100_000, 0.12, 12)
	assert.Equal(t, 6618.56, service.CalculateTotalInterest(100_000, emi, 12))
}

func TestClassifyDTI(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0.10, "excellent"},
		{0.25, "excellent"},
		{0.30, "good"},
		{0.35, "good"},
		{0.50, "fair"},
		{0.51, "poor"},
	}
	for _, tt := range tests {
		got := service.ClassifyDTI(tt.ratio)
		assert.Equal(t, tt.want, got.Status, "ratio %v", tt.ratio)
		assert.NotEmpty(t, got.Message)
	}
}

func TestSuggestOptimalTenure(t *testing.T) {
	t.Run("shortest tenure within target", func(t *testing.T) {
		tenure := service.SuggestOptimalTenure(1_000_000, 100_000, 0.12, 0.35)

		assert.Equal(t, 34, tenure)
		assert.LessOrEqual(t, service.CalculateEMI(1_000_000, 0.12, tenure), 35_000.0)
		assert.Greater(t, service.CalculateEMI(1_000_000, 0.12, tenure-1), 35_000.0)
	})

	t.Run("unaffordable falls back to default", func(t *testing.T) {
		assert.Equal(t, 12, service.SuggestOptimalTenure(100_000_000, 100_000, 0.12, 0.35))
	})

	t.Run("small loans clamp to minimum", func(t *testing.T) {
		assert.Equal(t, 3, service.SuggestOptimalTenure(1000, 100_000, 0.12, 0.35))
	})
}
