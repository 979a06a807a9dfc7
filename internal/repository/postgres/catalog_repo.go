package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) q(ctx context.Context) querier {
	return querierFromContext(ctx, r.db)
}

// translateError maps driver errors onto domain errors so usecases never see
// SQLSTATEs. Unique violations are matched by constraint name.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "products_slug_key":
			return domain.ConflictError(domain.CodeSlugDuplicate, "Slug already exists")
		case "products_sku_key", "product_variants_sku_key":
			return domain.ConflictError(domain.CodeSKUDuplicate, "SKU already exists")
		}
	}
	return err
}

const productColumns = `id, name, slug, sku, short_description, description, status, featured,
	category_id, brand, pet_type, season, tags, has_variants, price, stock, affiliate,
	is_active, weight, length, width, height, created_at, updated_at, deleted_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.ShortDescription, &p.Description,
		&p.Status, &p.Featured, &p.CategoryID, &p.Brand, &p.PetType, &p.Season,
		&p.Tags, &p.HasVariants, &p.Price, &p.Stock, &p.Affiliate, &p.IsActive,
		&p.Weight, &p.Length, &p.Width, &p.Height,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// --- Reads ---

func (r *catalogRepository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.q(ctx).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil || p == nil {
		return nil, err
	}
	if err := r.hydrate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *catalogRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := r.q(ctx).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1 AND deleted_at IS NULL`, slug)
	p, err := scanProduct(row)
	if err != nil || p == nil {
		return nil, err
	}
	if err := r.hydrate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// hydrate loads media, attributes with values, and variants with their
// attribute value maps.
func (r *catalogRepository) hydrate(ctx context.Context, p *domain.Product) error {
	media, err := r.mediaByProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Media = media

	attrs, err := r.attributesByProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Attributes = attrs

	variants, err := r.VariantsByProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Variants = variants
	return nil
}

func (r *catalogRepository) mediaByProduct(ctx context.Context, productID int64) ([]domain.ProductMedia, error) {
	rows, err := r.q(ctx).Query(ctx,
		`SELECT id, product_id, url, media_type, sort_order, is_primary
		 FROM product_media WHERE product_id = $1 ORDER BY sort_order, id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	media := []domain.ProductMedia{}
	for rows.Next() {
		var m domain.ProductMedia
		if err := rows.Scan(&m.ID, &m.ProductID, &m.URL, &m.Type, &m.SortOrder, &m.IsPrimary); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (r *catalogRepository) attributesByProduct(ctx context.Context, productID int64) ([]domain.ProductAttribute, error) {
	rows, err := r.q(ctx).Query(ctx,
		`SELECT a.id, a.product_id, a.name, v.id, v.value
		 FROM product_attributes a
		 LEFT JOIN product_attribute_values v ON v.attribute_id = a.id
		 WHERE a.product_id = $1
		 ORDER BY a.id, v.sort_order, v.id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := []domain.ProductAttribute{}
	byID := map[int64]int{}
	for rows.Next() {
		var (
			attr    domain.ProductAttribute
			valID   *int64
			valText *string
		)
		if err := rows.Scan(&attr.ID, &attr.ProductID, &attr.Name, &valID, &valText); err != nil {
			return nil, err
		}
		idx, seen := byID[attr.ID]
		if !seen {
			attr.Values = []domain.AttributeValue{}
			attrs = append(attrs, attr)
			idx = len(attrs) - 1
			byID[attr.ID] = idx
		}
		if valID != nil {
			attrs[idx].Values = append(attrs[idx].Values, domain.AttributeValue{
				ID:          *valID,
				AttributeID: attr.ID,
				Value:       *valText,
			})
		}
	}
	return attrs, rows.Err()
}

func (r *catalogRepository) VariantsByProduct(ctx context.Context, productID int64) ([]domain.ProductVariant, error) {
	rows, err := r.q(ctx).Query(ctx,
		`SELECT id, product_id, sku, price, compare_price, cost_price, stock,
			manage_stock, allow_backorder, status, is_active, image_url
		 FROM product_variants WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []domain.ProductVariant{}
	for rows.Next() {
		var v domain.ProductVariant
		err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.ComparePrice,
			&v.CostPrice, &v.Stock, &v.ManageStock, &v.AllowBackorder,
			&v.Status, &v.IsActive, &v.ImageURL)
		if err != nil {
			return nil, err
		}
		v.AttributeValues = map[string]string{}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(variants) == 0 {
		return variants, nil
	}

	// One pass over the junction rows fills every variant's value map.
	byID := map[int64]*domain.ProductVariant{}
	ids := make([]int64, len(variants))
	for i := range variants {
		byID[variants[i].ID] = &variants[i]
		ids[i] = variants[i].ID
	}

	valueRows, err := r.q(ctx).Query(ctx,
		`SELECT j.variant_id, a.name, v.value
		 FROM variant_attribute_values j
		 JOIN product_attributes a ON a.id = j.attribute_id
		 JOIN product_attribute_values v ON v.id = j.attribute_value_id
		 WHERE j.variant_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer valueRows.Close()

	for valueRows.Next() {
		var (
			variantID int64
			name      string
			value     string
		)
		if err := valueRows.Scan(&variantID, &name, &value); err != nil {
			return nil, err
		}
		if v, ok := byID[variantID]; ok {
			v.AttributeValues[name] = value
		}
	}
	return variants, valueRows.Err()
}

func (r *catalogRepository) GetVariant(ctx context.Context, productID, variantID int64) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := r.q(ctx).QueryRow(ctx,
		`SELECT id, product_id, sku, price, compare_price, cost_price, stock,
			manage_stock, allow_backorder, status, is_active, image_url
		 FROM product_variants WHERE id = $1 AND product_id = $2`, variantID, productID).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.ComparePrice, &v.CostPrice,
			&v.Stock, &v.ManageStock, &v.AllowBackorder, &v.Status, &v.IsActive, &v.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *catalogRepository) GetAttribute(ctx context.Context, productID, attributeID int64) (*domain.ProductAttribute, error) {
	var a domain.ProductAttribute
	err := r.q(ctx).QueryRow(ctx,
		`SELECT id, product_id, name FROM product_attributes
		 WHERE id = $1 AND product_id = $2`, attributeID, productID).
		Scan(&a.ID, &a.ProductID, &a.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *catalogRepository) SlugExists(ctx context.Context, slug string, excludeProductID int64) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM products
			WHERE slug = $1 AND id <> $2 AND deleted_at IS NULL
		)`, slug, excludeProductID).Scan(&exists)
	return exists, err
}

func (r *catalogRepository) SKUsInUse(ctx context.Context, skus []string, excludeVariantIDs []int64) ([]string, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	if excludeVariantIDs == nil {
		excludeVariantIDs = []int64{}
	}
	rows, err := r.q(ctx).Query(ctx,
		`SELECT sku FROM product_variants
		 WHERE sku = ANY($1) AND NOT (id = ANY($2))`, skus, excludeVariantIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inUse []string
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, err
		}
		inUse = append(inUse, sku)
	}
	return inUse, rows.Err()
}

func (r *catalogRepository) AttributeLookup(ctx context.Context, productID int64) (*domain.AttributeLookup, error) {
	rows, err := r.q(ctx).Query(ctx,
		`SELECT a.id, a.name, v.id, v.value
		 FROM product_attributes a
		 LEFT JOIN product_attribute_values v ON v.attribute_id = a.id
		 WHERE a.product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lookup := domain.NewAttributeLookup()
	for rows.Next() {
		var (
			attrID  int64
			name    string
			valID   *int64
			valText *string
		)
		if err := rows.Scan(&attrID, &name, &valID, &valText); err != nil {
			return nil, err
		}
		lookup.AddAttribute(name, attrID)
		if valID != nil {
			lookup.AddValue(name, *valText, *valID)
		}
	}
	return lookup, rows.Err()
}

func (r *catalogRepository) VariantsReferencedByOrders(ctx context.Context, variantIDs []int64) (int64, error) {
	var count int64
	err := r.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM order_items WHERE variant_id = ANY($1)`, variantIDs).Scan(&count)
	return count, err
}

// --- Product writes ---

func (r *catalogRepository) InsertProduct(ctx context.Context, p *domain.Product) error {
	err := r.q(ctx).QueryRow(ctx,
		`INSERT INTO products (
			name, slug, sku, short_description, description, status, featured,
			category_id, brand, pet_type, season, tags, has_variants, price, stock,
			affiliate, is_active, weight, length, width, height, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23
		) RETURNING id`,
		p.Name, p.Slug, p.SKU, p.ShortDescription, p.Description, p.Status, p.Featured,
		p.CategoryID, p.Brand, p.PetType, p.Season, p.Tags, p.HasVariants, p.Price, p.Stock,
		p.Affiliate, p.IsActive, p.Weight, p.Length, p.Width, p.Height, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (r *catalogRepository) UpdateProductFields(ctx context.Context, p *domain.Product) error {
	_, err := r.q(ctx).Exec(ctx,
		`UPDATE products SET
			name = $2, slug = $3, short_description = $4, description = $5,
			status = $6, featured = $7, category_id = $8, brand = $9, pet_type = $10,
			season = $11, tags = $12, has_variants = $13, is_active = $14,
			weight = $15, length = $16, width = $17, height = $18, updated_at = $19
		 WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.Name, p.Slug, p.ShortDescription, p.Description,
		p.Status, p.Featured, p.CategoryID, p.Brand, p.PetType,
		p.Season, p.Tags, p.HasVariants, p.IsActive,
		p.Weight, p.Length, p.Width, p.Height, p.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (r *catalogRepository) UpdateProductAggregates(ctx context.Context, productID int64, price float64, sku string, stock int) error {
	_, err := r.q(ctx).Exec(ctx,
		`UPDATE products SET price = $2, sku = $3, stock = $4, updated_at = now()
		 WHERE id = $1`, productID, price, sku, stock)
	return err
}

func (r *catalogRepository) SoftDeleteProduct(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := r.q(ctx).Exec(ctx,
		`UPDATE products
		 SET deleted_at = $2, is_active = false, status = $3, updated_at = $2
		 WHERE id = $1 AND deleted_at IS NULL`, id, at, domain.StatusInactive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- Media ---

func (r *catalogRepository) ReplaceMedia(ctx context.Context, productID int64, media []domain.ProductMedia) error {
	q := r.q(ctx)
	if _, err := q.Exec(ctx,
		`DELETE FROM product_media WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for i := range media {
		m := &media[i]
		err := q.QueryRow(ctx,
			`INSERT INTO product_media (product_id, url, media_type, sort_order, is_primary)
			 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
			productID, m.URL, m.Type, m.SortOrder, m.IsPrimary).Scan(&m.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// --- Attributes ---

func (r *catalogRepository) InsertAttribute(ctx context.Context, a *domain.ProductAttribute) error {
	return r.q(ctx).QueryRow(ctx,
		`INSERT INTO product_attributes (product_id, name) VALUES ($1,$2) RETURNING id`,
		a.ProductID, a.Name).Scan(&a.ID)
}

func (r *catalogRepository) RenameAttribute(ctx context.Context, attributeID int64, name string) error {
	_, err := r.q(ctx).Exec(ctx,
		`UPDATE product_attributes SET name = $2 WHERE id = $1`, attributeID, name)
	return err
}

// ReplaceAttributeValues rebuilds the value set, keeping payload order as
// sort order. Junction rows pointing at removed values go with them via
// ON DELETE CASCADE.
func (r *catalogRepository) ReplaceAttributeValues(ctx context.Context, attributeID int64, values []string) ([]domain.AttributeValue, error) {
	q := r.q(ctx)
	if _, err := q.Exec(ctx,
		`DELETE FROM product_attribute_values WHERE attribute_id = $1`, attributeID); err != nil {
		return nil, err
	}

	out := make([]domain.AttributeValue, 0, len(values))
	for i, value := range values {
		var id int64
		err := q.QueryRow(ctx,
			`INSERT INTO product_attribute_values (attribute_id, value, sort_order)
			 VALUES ($1,$2,$3) RETURNING id`, attributeID, value, i).Scan(&id)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.AttributeValue{ID: id, AttributeID: attributeID, Value: value})
	}
	return out, nil
}

func (r *catalogRepository) DeleteAttributes(ctx context.Context, productID int64, ids []int64) error {
	_, err := r.q(ctx).Exec(ctx,
		`DELETE FROM product_attributes WHERE product_id = $1 AND id = ANY($2)`, productID, ids)
	return err
}

// --- Variants ---

func (r *catalogRepository) InsertVariant(ctx context.Context, v *domain.ProductVariant) error {
	err := r.q(ctx).QueryRow(ctx,
		`INSERT INTO product_variants (
			product_id, sku, price, compare_price, cost_price, stock,
			manage_stock, allow_backorder, status, is_active, image_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
		v.ProductID, v.SKU, v.Price, v.ComparePrice, v.CostPrice, v.Stock,
		v.ManageStock, v.AllowBackorder, v.Status, v.IsActive, v.ImageURL).Scan(&v.ID)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (r *catalogRepository) UpdateVariant(ctx context.Context, v *domain.ProductVariant) error {
	_, err := r.q(ctx).Exec(ctx,
		`UPDATE product_variants SET
			sku = $3, price = $4, compare_price = $5, cost_price = $6, stock = $7,
			manage_stock = $8, allow_backorder = $9, status = $10, is_active = $11,
			image_url = $12
		 WHERE id = $1 AND product_id = $2`,
		v.ID, v.ProductID, v.SKU, v.Price, v.ComparePrice, v.CostPrice, v.Stock,
		v.ManageStock, v.AllowBackorder, v.Status, v.IsActive, v.ImageURL)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (r *catalogRepository) DeleteVariants(ctx context.Context, productID int64, ids []int64) error {
	_, err := r.q(ctx).Exec(ctx,
		`DELETE FROM product_variants WHERE product_id = $1 AND id = ANY($2)`, productID, ids)
	return err
}

func (r *catalogRepository) ReplaceVariantAttributeValues(ctx context.Context, variantID int64, rows []domain.VariantAttributeValue) error {
	q := r.q(ctx)
	if _, err := q.Exec(ctx,
		`DELETE FROM variant_attribute_values WHERE variant_id = $1`, variantID); err != nil {
		return err
	}
	for _, row := range rows {
		_, err := q.Exec(ctx,
			`INSERT INTO variant_attribute_values (variant_id, attribute_id, attribute_value_id)
			 VALUES ($1,$2,$3)`, variantID, row.AttributeID, row.AttributeValueID)
		if err != nil {
			return err
		}
	}
	return nil
}

// --- Bulk primitives ---

func (r *catalogRepository) SetProductStatus(ctx context.Context, id int64, status string) (bool, error) {
	tag, err := r.q(ctx).Exec(ctx,
		`UPDATE products SET status = $2, is_active = $3, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		id, status, status == domain.StatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *catalogRepository) SetProductCategory(ctx context.Context, id int64, categoryID int64) (bool, error) {
	tag, err := r.q(ctx).Exec(ctx,
		`UPDATE products SET category_id = $2, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`, id, categoryID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *catalogRepository) SetProductAffiliate(ctx context.Context, id int64, affiliate int64) (bool, error) {
	tag, err := r.q(ctx).Exec(ctx,
		`UPDATE products SET affiliate = $2, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`, id, affiliate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// BulkPatchVariants builds one UPDATE over the allow-listed fields and runs
// it against every id in the list. Nil patch fields are left out of the SET
// clause entirely.
func (r *catalogRepository) BulkPatchVariants(ctx context.Context, productID int64, variantIDs []int64, patch domain.VariantPatch) (int64, error) {
	set := []string{}
	args := []any{productID, variantIDs}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.ComparePrice != nil {
		add("compare_price", *patch.ComparePrice)
	}
	if patch.CostPrice != nil {
		add("cost_price", *patch.CostPrice)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
		add("is_active", *patch.Status == domain.StatusActive)
	}
	if patch.ManageStock != nil {
		add("manage_stock", *patch.ManageStock)
	}
	if patch.AllowBackorder != nil {
		add("allow_backorder", *patch.AllowBackorder)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if len(set) == 0 {
		return 0, nil
	}

	sql := fmt.Sprintf(
		`UPDATE product_variants SET %s WHERE product_id = $1 AND id = ANY($2)`,
		strings.Join(set, ", "))
	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, translateError(err)
	}
	return tag.RowsAffected(), nil
}
