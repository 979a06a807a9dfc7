package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
)

// The admin listing joins the product scalars with a grouped variant
// sub-query so every row carries live aggregates. COALESCE falls back to the
// legacy scalar columns for products without variants.
const listSelect = `
SELECT p.id, p.name, p.slug, p.sku, p.status, p.featured, p.category_id,
	p.brand, p.has_variants, p.affiliate,
	COALESCE(v.variant_count, 0) AS variant_count,
	COALESCE(v.price_min, p.price) AS price_min,
	COALESCE(v.price_max, p.price) AS price_max,
	COALESCE(v.stock_total, p.stock) AS stock_total,
	p.created_at, p.updated_at
FROM products p
LEFT JOIN (
	SELECT product_id,
		COUNT(*) AS variant_count,
		MIN(price) AS price_min,
		MAX(price) AS price_max,
		SUM(stock) AS stock_total
	FROM product_variants
	GROUP BY product_id
) v ON v.product_id = p.id`

// Whitelisted sort columns. Keys are the API's sort names.
var listSortColumns = map[string]string{
	"created": "p.created_at",
	"updated": "p.updated_at",
	"price":   "price_min",
	"stock":   "stock_total",
	"name":    "p.name",
}

// buildListFilter renders the WHERE clause shared by the page and count
// queries. Every value goes through a $n placeholder.
func buildListFilter(f domain.ProductListFilter) (string, []any) {
	where := []string{"p.deleted_at IS NULL"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Query != "" {
		p := arg("%" + f.Query + "%")
		where = append(where, fmt.Sprintf("(p.name ILIKE %s OR p.sku ILIKE %s OR p.slug ILIKE %s)", p, p, p))
	}
	if f.Status != "" {
		where = append(where, "p.status = "+arg(f.Status))
	}
	if f.CategoryID != nil {
		where = append(where, "p.category_id = "+arg(*f.CategoryID))
	}
	if f.Brand != "" {
		where = append(where, "p.brand = "+arg(f.Brand))
	}
	if f.HasVariants != nil {
		where = append(where, "p.has_variants = "+arg(*f.HasVariants))
	}
	if f.Featured != nil {
		where = append(where, "p.featured = "+arg(*f.Featured))
	}
	if f.HasAffiliate != nil {
		if *f.HasAffiliate {
			where = append(where, "p.affiliate IS NOT NULL")
		} else {
			where = append(where, "p.affiliate IS NULL")
		}
	}
	if f.PriceMin != nil {
		where = append(where, "COALESCE(v.price_min, p.price) >= "+arg(*f.PriceMin))
	}
	if f.PriceMax != nil {
		where = append(where, "COALESCE(v.price_min, p.price) <= "+arg(*f.PriceMax))
	}
	switch f.StockStatus {
	case domain.StockStatusOut:
		where = append(where, "COALESCE(v.stock_total, p.stock) <= 0")
	case domain.StockStatusLow:
		where = append(where, fmt.Sprintf(
			"COALESCE(v.stock_total, p.stock) > 0 AND COALESCE(v.stock_total, p.stock) < %d",
			domain.LowStockThreshold))
	case domain.StockStatusIn:
		where = append(where, fmt.Sprintf(
			"COALESCE(v.stock_total, p.stock) >= %d", domain.LowStockThreshold))
	}

	return " WHERE " + strings.Join(where, " AND "), args
}

func buildListQuery(f domain.ProductListFilter) (string, []any) {
	whereClause, args := buildListFilter(f)

	column, ok := listSortColumns[f.Sort]
	if !ok {
		column = "p.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		direction = "ASC"
	}

	args = append(args, f.Limit)
	limitPos := len(args)
	args = append(args, f.Offset)
	offsetPos := len(args)

	sql := listSelect + whereClause +
		fmt.Sprintf(" ORDER BY %s %s, p.id %s LIMIT $%d OFFSET $%d",
			column, direction, direction, limitPos, offsetPos)
	return sql, args
}

func buildCountQuery(f domain.ProductListFilter) (string, []any) {
	whereClause, args := buildListFilter(f)
	sql := `
SELECT COUNT(*)
FROM products p
LEFT JOIN (
	SELECT product_id, MIN(price) AS price_min, SUM(stock) AS stock_total
	FROM product_variants
	GROUP BY product_id
) v ON v.product_id = p.id` + whereClause
	return sql, args
}

func (r *catalogRepository) List(ctx context.Context, filter domain.ProductListFilter) ([]domain.ProductSummary, int64, error) {
	sql, args := buildListQuery(filter)
	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := []domain.ProductSummary{}
	for rows.Next() {
		var s domain.ProductSummary
		err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.SKU, &s.Status, &s.Featured,
			&s.CategoryID, &s.Brand, &s.HasVariants, &s.Affiliate,
			&s.VariantCount, &s.PriceMin, &s.PriceMax, &s.StockTotal,
			&s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countSQL, countArgs := buildCountQuery(filter)
	var total int64
	if err := r.q(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}
