package usecase

import (
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
)

// Payload-level validation. Checks run in a fixed order and fail fast with a
// distinct error code per rule; store-backed uniqueness checks live in the
// sync engine so they see a single consistent snapshot.

func validateCreatePayload(in *CreateProductInput) error {
	if in.Name == "" {
		return domain.ValidationError(domain.CodeNameRequired, "name is required")
	}
	if err := validateVariantCount(in.HasVariants, len(in.Variants)); err != nil {
		return err
	}
	return validateVariantSpecs(in.Variants)
}

// validateVariantCount enforces the default-variant rule: a simple product is
// exactly one variant, a variant product is at least one.
func validateVariantCount(hasVariants bool, count int) error {
	if !hasVariants {
		if count != 1 {
			return domain.ValidationError(domain.CodeDefaultVariantRequired,
				"has_variants=false requires exactly 1 default variant")
		}
		return nil
	}
	if count == 0 {
		return domain.ValidationError(domain.CodeVariantsRequired,
			"variants is required when has_variants=true")
	}
	return nil
}

// validateVariantSpecs checks each variant spec and within-payload SKU
// uniqueness, before anything touches the store.
func validateVariantSpecs(variants []VariantInput) error {
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if v.SKU == "" {
			return domain.ValidationError(domain.CodeSKURequired, "variant.sku is required")
		}
		if _, dup := seen[v.SKU]; dup {
			return domain.ValidationError(domain.CodeSKUDuplicate, "SKU already exists in request")
		}
		seen[v.SKU] = struct{}{}
		if v.Price <= 0 {
			return domain.ValidationError(domain.CodePriceInvalid, "variant.price must be > 0")
		}
		if v.CostPrice != nil && *v.CostPrice < 0 {
			return domain.ValidationError(domain.CodeCostInvalid, "variant.cost_price must be >= 0")
		}
		if v.Stock < 0 {
			return domain.ValidationError(domain.CodeStockInvalid, "variant.stock must be >= 0")
		}
		if v.Status != "" && !domain.IsValidStatus(v.Status) {
			return domain.ValidationError(domain.CodeStatusInvalid, "invalid variant status: %s", v.Status)
		}
	}
	return nil
}

func variantSKUs(variants []VariantInput) []string {
	skus := make([]string, len(variants))
	for i, v := range variants {
		skus[i] = v.SKU
	}
	return skus
}

// existingVariantIDs collects ids of payload variants tagged as updates, for
// excluding them from the store-wide SKU uniqueness check.
func existingVariantIDs(variants []VariantInput) []int64 {
	var ids []int64
	for _, v := range variants {
		if ref := v.Ref(); ref.Exists {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}
