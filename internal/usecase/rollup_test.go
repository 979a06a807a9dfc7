package usecase

import (
	"testing"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRollup(t *testing.T) {
	t.Run("derives min max sum and count from variants", func(t *testing.T) {
		p := &domain.Product{Price: 999, Stock: 999}
		variants := []domain.ProductVariant{
			{Price: 25.50, Stock: 4},
			{Price: 19.99, Stock: 6},
			{Price: 32.00, Stock: 0},
		}

		r := ComputeRollup(p, variants)

		assert.Equal(t, 19.99, r.PriceMin)
		assert.Equal(t, 32.00, r.PriceMax)
		assert.Equal(t, 10, r.StockTotal)
		assert.Equal(t, 3, r.VariantCount)
		assert.Equal(t, domain.StockStatusIn, r.StockStatus)
	})

	t.Run("falls back to product scalars without variants", func(t *testing.T) {
		p := &domain.Product{Price: 12.50, Stock: 3}

		r := ComputeRollup(p, nil)

		assert.Equal(t, 12.50, r.PriceMin)
		assert.Equal(t, 12.50, r.PriceMax)
		assert.Equal(t, 3, r.StockTotal)
		assert.Equal(t, 0, r.VariantCount)
		assert.Equal(t, domain.StockStatusLow, r.StockStatus)
	})
}

func TestStockStatusFor(t *testing.T) {
	cases := []struct {
		total int
		want  string
	}{
		{-3, domain.StockStatusOut},
		{0, domain.StockStatusOut},
		{1, domain.StockStatusLow},
		{9, domain.StockStatusLow},
		{10, domain.StockStatusIn},
		{500, domain.StockStatusIn},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StockStatusFor(tc.total), "total=%d", tc.total)
	}
}

func TestProfitMargin(t *testing.T) {
	t.Run("nil cost gives nil profit and margin", func(t *testing.T) {
		profit, margin := ProfitMargin(20, nil)
		assert.Nil(t, profit)
		assert.Nil(t, margin)
	})

	t.Run("computes profit and margin", func(t *testing.T) {
		cost := 15.0
		profit, margin := ProfitMargin(20, &cost)
		require.NotNil(t, profit)
		require.NotNil(t, margin)
		assert.InDelta(t, 5.0, *profit, 0.0001)
		assert.InDelta(t, 25.0, *margin, 0.0001)
	})

	t.Run("zero price keeps margin nil", func(t *testing.T) {
		cost := 10.0
		profit, margin := ProfitMargin(0, &cost)
		require.NotNil(t, profit)
		assert.InDelta(t, -10.0, *profit, 0.0001)
		assert.Nil(t, margin)
	})
}
