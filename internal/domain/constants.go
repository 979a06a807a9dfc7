package domain

// Product / variant statuses
const (
	StatusActive       = "active"
	StatusInactive     = "inactive"
	StatusDraft        = "draft"
	StatusDiscontinued = "discontinued"
)

var ProductStatuses = []string{
	StatusActive,
	StatusInactive,
	StatusDraft,
	StatusDiscontinued,
}

func IsValidStatus(s string) bool {
	for _, v := range ProductStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Stock status buckets derived from stock_total
const (
	StockStatusIn  = "in_stock"
	StockStatusLow = "low"
	StockStatusOut = "out"
)

// LowStockThreshold is a fixed policy constant: totals in (0, threshold) are
// classified "low". Not configurable per product.
const LowStockThreshold = 10

// Media types
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Bulk product actions
const (
	BulkActionStatus    = "status"
	BulkActionCategory  = "category"
	BulkActionAffiliate = "affiliate"
	BulkActionDelete    = "delete"
)

// Bulk limits
const (
	MaxBulkProductIDs = 500
	MaxBulkVariantIDs = 200
)
