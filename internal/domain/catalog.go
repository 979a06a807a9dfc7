package domain

import (
	"context"
	"time"
)

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Product is the catalog aggregate root. Price, SKU and Stock are legacy
// scalar fields kept in sync with the variant set for older readers:
// Price mirrors the cheapest variant, SKU the first variant, Stock the sum.
type Product struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	SKU              string     `json:"sku"`
	ShortDescription *string    `json:"short_description"`
	Description      *string    `json:"description"`
	Status           string     `json:"status"`
	Featured         bool       `json:"featured"`
	CategoryID       int64      `json:"category_id"`
	Brand            *string    `json:"brand"`
	PetType          *string    `json:"pet_type"`
	Season           *string    `json:"season"`
	Tags             []string   `json:"tags"`
	HasVariants      bool       `json:"has_variants"`
	Price            float64    `json:"price"`
	Stock            int        `json:"stock"`
	Affiliate        *int64     `json:"affiliate"`
	IsActive         bool       `json:"is_active"`
	Weight           float64    `json:"weight"`
	Length           float64    `json:"length"`
	Width            float64    `json:"width"`
	Height           float64    `json:"height"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at"`

	Media      []ProductMedia     `json:"media"`
	Attributes []ProductAttribute `json:"attributes"`
	Variants   []ProductVariant   `json:"variants"`
}

// ProductMedia is one media slot on a product. The first slot by the
// sort_order==1 convention is the primary image (rule inherited from the
// legacy admin UI; do not change without product-owner sign-off).
type ProductMedia struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"-"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	SortOrder int    `json:"sort_order"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductAttribute is a named axis of variation ("Size") scoped to one
// product. Its value set is ordered; values are unique within the attribute.
type ProductAttribute struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"-"`
	Name      string           `json:"name"`
	Values    []AttributeValue `json:"values"`
}

type AttributeValue struct {
	ID          int64  `json:"id"`
	AttributeID int64  `json:"-"`
	Value       string `json:"value"`
}

// ProductVariant is one purchasable configuration. AttributeValues maps
// attribute name to the chosen value ("Size" -> "M") and is backed by
// variant_attribute_values junction rows, one per attribute.
type ProductVariant struct {
	ID              int64             `json:"id"`
	ProductID       int64             `json:"-"`
	SKU             string            `json:"sku"`
	Price           float64           `json:"price"`
	ComparePrice    *float64          `json:"compare_price"`
	CostPrice       *float64          `json:"cost_price"`
	Stock           int               `json:"stock"`
	ManageStock     bool              `json:"manage_stock"`
	AllowBackorder  bool              `json:"allow_backorder"`
	Status          string            `json:"status"`
	IsActive        bool              `json:"is_active"`
	ImageURL        *string           `json:"image_url"`
	AttributeValues map[string]string `json:"attribute_values"`
}

// VariantAttributeValue binds a variant to one (attribute, value) pair of its
// product. Unique per (variant, attribute).
type VariantAttributeValue struct {
	VariantID        int64
	AttributeID      int64
	AttributeValueID int64
}

// AttributeLookup resolves (attribute name, value) pairs to persisted ids.
// The sync engine builds it from the payload being applied or loads it from
// the store when the payload leaves attributes untouched.
type AttributeLookup struct {
	attrIDByName  map[string]int64
	valueIDByPair map[[2]string]int64
}

func NewAttributeLookup() *AttributeLookup {
	return &AttributeLookup{
		attrIDByName:  make(map[string]int64),
		valueIDByPair: make(map[[2]string]int64),
	}
}

func (l *AttributeLookup) AddAttribute(name string, id int64) {
	l.attrIDByName[name] = id
}

func (l *AttributeLookup) AddValue(attrName, value string, valueID int64) {
	l.valueIDByPair[[2]string{attrName, value}] = valueID
}

// HasAttribute reports whether the attribute name exists for this product,
// letting callers tell an unknown attribute apart from an unknown value.
func (l *AttributeLookup) HasAttribute(attrName string) bool {
	_, ok := l.attrIDByName[attrName]
	return ok
}

// Resolve returns the attribute and value ids for the pair, or ok=false when
// either the attribute name or the value is unknown for this product.
func (l *AttributeLookup) Resolve(attrName, value string) (attrID, valueID int64, ok bool) {
	attrID, ok = l.attrIDByName[attrName]
	if !ok {
		return 0, 0, false
	}
	valueID, ok = l.valueIDByPair[[2]string{attrName, value}]
	if !ok {
		return 0, 0, false
	}
	return attrID, valueID, true
}

// ProductSummary is one row of the admin listing: product scalars joined with
// the variant aggregate sub-query (falling back to the legacy scalars when
// the product has no variants).
type ProductSummary struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	SKU          string    `json:"sku"`
	Status       string    `json:"status"`
	Featured     bool      `json:"featured"`
	CategoryID   int64     `json:"category_id"`
	Brand        *string   `json:"brand"`
	HasVariants  bool      `json:"has_variants"`
	Affiliate    *int64    `json:"affiliate"`
	VariantCount int       `json:"variant_count"`
	PriceMin     float64   `json:"price_min"`
	PriceMax     float64   `json:"price_max"`
	StockTotal   int       `json:"stock_total"`
	StockStatus  string    `json:"stock_status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListFilter drives the admin listing query. Pointer fields are
// tri-state: nil means "no filter".
type ProductListFilter struct {
	Query        string
	Status       string
	CategoryID   *int64
	Brand        string
	HasVariants  *bool
	StockStatus  string // in_stock | low | out
	PriceMin     *float64
	PriceMax     *float64
	HasAffiliate *bool
	Featured     *bool
	Sort         string // created | updated | price | stock | name
	Order        string // asc | desc
	Limit        int
	Offset       int
}

// VariantPatch carries the allow-listed fields of a bulk variant update.
// Nil fields are left untouched.
type VariantPatch struct {
	Price          *float64
	ComparePrice   *float64
	CostPrice      *float64
	Stock          *int
	Status         *string
	ManageStock    *bool
	AllowBackorder *bool
	ImageURL       *string
}

func (p VariantPatch) IsZero() bool {
	return p.Price == nil && p.ComparePrice == nil && p.CostPrice == nil &&
		p.Stock == nil && p.Status == nil && p.ManageStock == nil &&
		p.AllowBackorder == nil && p.ImageURL == nil
}

// CatalogRepository is the transactional catalog store. Implementations must
// honor a transaction carried in the context by the TransactionManager so
// that every call inside one Do() shares a single atomic transaction.
type CatalogRepository interface {
	// Reads
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	SlugExists(ctx context.Context, slug string, excludeProductID int64) (bool, error)
	SKUsInUse(ctx context.Context, skus []string, excludeVariantIDs []int64) ([]string, error)
	AttributeLookup(ctx context.Context, productID int64) (*AttributeLookup, error)
	VariantsByProduct(ctx context.Context, productID int64) ([]ProductVariant, error)
	GetVariant(ctx context.Context, productID, variantID int64) (*ProductVariant, error)
	GetAttribute(ctx context.Context, productID, attributeID int64) (*ProductAttribute, error)
	VariantsReferencedByOrders(ctx context.Context, variantIDs []int64) (int64, error)
	List(ctx context.Context, filter ProductListFilter) ([]ProductSummary, int64, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)

	// Product writes
	InsertProduct(ctx context.Context, p *Product) error
	UpdateProductFields(ctx context.Context, p *Product) error
	UpdateProductAggregates(ctx context.Context, productID int64, price float64, sku string, stock int) error
	SoftDeleteProduct(ctx context.Context, id int64, at time.Time) (bool, error)

	// Media
	ReplaceMedia(ctx context.Context, productID int64, media []ProductMedia) error

	// Attributes
	InsertAttribute(ctx context.Context, a *ProductAttribute) error
	RenameAttribute(ctx context.Context, attributeID int64, name string) error
	ReplaceAttributeValues(ctx context.Context, attributeID int64, values []string) ([]AttributeValue, error)
	DeleteAttributes(ctx context.Context, productID int64, ids []int64) error

	// Variants
	InsertVariant(ctx context.Context, v *ProductVariant) error
	UpdateVariant(ctx context.Context, v *ProductVariant) error
	DeleteVariants(ctx context.Context, productID int64, ids []int64) error
	ReplaceVariantAttributeValues(ctx context.Context, variantID int64, rows []VariantAttributeValue) error

	// Bulk mutation primitives; each returns whether a live product matched.
	SetProductStatus(ctx context.Context, id int64, status string) (bool, error)
	SetProductCategory(ctx context.Context, id int64, categoryID int64) (bool, error)
	SetProductAffiliate(ctx context.Context, id int64, affiliate int64) (bool, error)
	BulkPatchVariants(ctx context.Context, productID int64, variantIDs []int64, patch VariantPatch) (int64, error)
}
