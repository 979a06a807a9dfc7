package usecase

import (
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
)

// Rollup is the aggregate view of a product's variant set, cached on the
// product row (legacy price/sku/stock) and recomputed after every write.
type Rollup struct {
	PriceMin     float64 `json:"price_min"`
	PriceMax     float64 `json:"price_max"`
	StockTotal   int     `json:"stock_total"`
	VariantCount int     `json:"variant_count"`
	StockStatus  string  `json:"stock_status"`
}

// ComputeRollup derives the aggregate from the variant set, falling back to
// the product's own scalar price/stock when it has no variants.
func ComputeRollup(p *domain.Product, variants []domain.ProductVariant) Rollup {
	if len(variants) == 0 {
		return Rollup{
			PriceMin:    p.Price,
			PriceMax:    p.Price,
			StockTotal:  p.Stock,
			StockStatus: StockStatusFor(p.Stock),
		}
	}

	r := Rollup{
		PriceMin:     variants[0].Price,
		PriceMax:     variants[0].Price,
		VariantCount: len(variants),
	}
	for _, v := range variants {
		if v.Price < r.PriceMin {
			r.PriceMin = v.Price
		}
		if v.Price > r.PriceMax {
			r.PriceMax = v.Price
		}
		r.StockTotal += v.Stock
	}
	r.StockStatus = StockStatusFor(r.StockTotal)
	return r
}

// StockStatusFor buckets a stock total: out at <=0, low below the policy
// threshold, in_stock otherwise.
func StockStatusFor(total int) string {
	switch {
	case total <= 0:
		return domain.StockStatusOut
	case total < domain.LowStockThreshold:
		return domain.StockStatusLow
	default:
		return domain.StockStatusIn
	}
}

// ProfitMargin derives the display-only profit and margin for a variant.
// Both are nil unless cost_price is set; margin is additionally nil when
// price is zero, so the division can never blow up.
func ProfitMargin(price float64, costPrice *float64) (profit, marginPercent *float64) {
	if costPrice == nil {
		return nil, nil
	}
	p := price - *costPrice
	profit = &p
	if price > 0 {
		m := p / price * 100
		marginPercent = &m
	}
	return profit, marginPercent
}
