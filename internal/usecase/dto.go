package usecase

import (
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
)

// ShippingInput fully replaces the product's shipping dimensions when present.
type ShippingInput struct {
	Weight float64 `json:"weight"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type MediaInput struct {
	URL       string `json:"url"`
	Type      string `json:"type"`
	SortOrder int    `json:"sort_order"`
}

// AttributeInput upserts one attribute: ID present means update-in-place,
// absent means create. Values always replace the attribute's value set.
type AttributeInput struct {
	ID     *int64   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Ref returns the tagged upsert reference for this attribute.
func (a AttributeInput) Ref() domain.UpsertRef {
	if a.ID != nil && *a.ID > 0 {
		return domain.ExistingRef(*a.ID)
	}
	return domain.NewRef()
}

// VariantInput upserts one variant. AttributeValues maps attribute name to
// the chosen value and must resolve against the product's attributes.
type VariantInput struct {
	ID              *int64            `json:"id"`
	SKU             string            `json:"sku"`
	Price           float64           `json:"price"`
	ComparePrice    *float64          `json:"compare_price"`
	CostPrice       *float64          `json:"cost_price"`
	Stock           int               `json:"stock"`
	ManageStock     bool              `json:"manage_stock"`
	AllowBackorder  bool              `json:"allow_backorder"`
	Status          string            `json:"status"`
	AttributeValues map[string]string `json:"attribute_values"`
	ImageURL        *string           `json:"image_url"`
}

func (v VariantInput) Ref() domain.UpsertRef {
	if v.ID != nil && *v.ID > 0 {
		return domain.ExistingRef(*v.ID)
	}
	return domain.NewRef()
}

// CreateProductInput is the create payload. Absent optional scalars default
// the same way the admin UI sends them.
type CreateProductInput struct {
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	ShortDescription *string          `json:"short_description"`
	Description      *string          `json:"description"`
	Status           string           `json:"status"`
	Featured         bool             `json:"featured"`
	CategoryID       int64            `json:"category_id"`
	Brand            *string          `json:"brand"`
	PetType          *string          `json:"pet_type"`
	Season           *string          `json:"season"`
	Tags             []string         `json:"tags"`
	HasVariants      bool             `json:"has_variants"`
	Shipping         ShippingInput    `json:"shipping"`
	Media            []MediaInput     `json:"media"`
	Attributes       []AttributeInput `json:"attributes"`
	Variants         []VariantInput   `json:"variants"`
}

// UpdateProductInput is the reconciliation-update payload. Every field is
// wrapped in Optional: omitted means "leave untouched", present-but-empty
// means "clear". Deleted id lists are applied before upserts.
type UpdateProductInput struct {
	Name             domain.Optional[string]           `json:"name"`
	Slug             domain.Optional[string]           `json:"slug"`
	ShortDescription domain.Optional[string]           `json:"short_description"`
	Description      domain.Optional[string]           `json:"description"`
	Status           domain.Optional[string]           `json:"status"`
	Featured         domain.Optional[bool]             `json:"featured"`
	CategoryID       domain.Optional[int64]            `json:"category_id"`
	Brand            domain.Optional[string]           `json:"brand"`
	PetType          domain.Optional[string]           `json:"pet_type"`
	Season           domain.Optional[string]           `json:"season"`
	Tags             domain.Optional[[]string]         `json:"tags"`
	HasVariants      domain.Optional[bool]             `json:"has_variants"`
	Shipping         domain.Optional[ShippingInput]    `json:"shipping"`
	Media            domain.Optional[[]MediaInput]     `json:"media"`
	Attributes       domain.Optional[[]AttributeInput] `json:"attributes"`
	Variants         domain.Optional[[]VariantInput]   `json:"variants"`

	DeletedVariantIDs   []int64 `json:"deleted_variant_ids"`
	DeletedAttributeIDs []int64 `json:"deleted_attribute_ids"`
}

// GenerateVariantsInput feeds the combination preview.
type GenerateVariantsInput struct {
	Attributes []AttributeInput `json:"attributes"`
}

// BulkProductsInput applies one action to many products.
type BulkProductsInput struct {
	IDs    []int64                `json:"ids"`
	Action string                 `json:"action"`
	Data   map[string]interface{} `json:"data"`
}

// BulkFailure reports one id that could not be mutated.
type BulkFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult is the partial-success outcome of a bulk mutation.
type BulkResult struct {
	Updated int           `json:"updated"`
	Failed  []BulkFailure `json:"failed"`
}

// BulkVariantsInput patches allow-listed fields on many variants of one
// product. Unknown keys in Update are silently dropped.
type BulkVariantsInput struct {
	VariantIDs []int64                `json:"variant_ids"`
	Update     map[string]interface{} `json:"update"`
}
