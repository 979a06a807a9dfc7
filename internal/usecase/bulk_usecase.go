package usecase

import (
	"context"
	"time"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/logger"
)

// BulkUsecase applies one mutation to many catalog rows at once. Item-level
// failures (missing row, bad per-item data) are collected and reported; they
// never abort the batch. Batch-level failures (bad action, storage errors)
// roll everything back.
type BulkUsecase struct {
	repo      domain.CatalogRepository
	txManager domain.TransactionManager
}

func NewBulkUsecase(repo domain.CatalogRepository, tx domain.TransactionManager) *BulkUsecase {
	return &BulkUsecase{repo: repo, txManager: tx}
}

// BulkMutateProducts runs one action over up to MaxBulkProductIDs products
// inside a single transaction.
func (uc *BulkUsecase) BulkMutateProducts(ctx context.Context, in *BulkProductsInput) (*BulkResult, error) {
	if len(in.IDs) == 0 {
		return nil, domain.ValidationError(domain.CodeIDsRequired, "product_ids is required")
	}
	if len(in.IDs) > domain.MaxBulkProductIDs {
		return nil, domain.ValidationError(domain.CodeTooManyIDs,
			"at most %d products per request", domain.MaxBulkProductIDs)
	}

	apply, err := uc.resolveAction(in)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Failed: []BulkFailure{}}
	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		for _, id := range in.IDs {
			found, reason, err := apply(ctx, id)
			if err != nil {
				return err
			}
			switch {
			case reason != "":
				result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: reason})
			case !found:
				result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: domain.CodeNotFound})
			default:
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	logger.Info().
		Str("action", in.Action).
		Int("updated", result.Updated).
		Int("failed", len(result.Failed)).
		Msg("bulk product mutation applied")
	return result, nil
}

// applyFunc mutates one product. A non-empty reason marks the item failed
// without aborting the batch; an error aborts and rolls back everything.
type applyFunc func(ctx context.Context, id int64) (found bool, reason string, err error)

// failEvery reports each id as failed with the given reason. Used when the
// action data is invalid: bad data fails the items, not the request.
func failEvery(reason string) applyFunc {
	return func(ctx context.Context, id int64) (bool, string, error) {
		return true, reason, nil
	}
}

func (uc *BulkUsecase) resolveAction(in *BulkProductsInput) (applyFunc, error) {
	switch in.Action {
	case domain.BulkActionStatus:
		status, _ := in.Data["status"].(string)
		if !domain.IsValidStatus(status) {
			return failEvery(domain.CodeStatusInvalid), nil
		}
		return func(ctx context.Context, id int64) (bool, string, error) {
			found, err := uc.repo.SetProductStatus(ctx, id, status)
			return found, "", err
		}, nil

	case domain.BulkActionCategory:
		categoryID, ok := intFromData(in.Data, "category_id")
		if !ok || categoryID <= 0 {
			return failEvery(domain.CodeCategoryInvalid), nil
		}
		return func(ctx context.Context, id int64) (bool, string, error) {
			found, err := uc.repo.SetProductCategory(ctx, id, categoryID)
			return found, "", err
		}, nil

	case domain.BulkActionAffiliate:
		affiliate, ok := intFromData(in.Data, "affiliate")
		if !ok {
			return failEvery(domain.CodeAffiliateInvalid), nil
		}
		return func(ctx context.Context, id int64) (bool, string, error) {
			found, err := uc.repo.SetProductAffiliate(ctx, id, affiliate)
			return found, "", err
		}, nil

	case domain.BulkActionDelete:
		return func(ctx context.Context, id int64) (bool, string, error) {
			found, err := uc.repo.SoftDeleteProduct(ctx, id, time.Now())
			return found, "", err
		}, nil

	default:
		return nil, domain.ValidationError(domain.CodeActionInvalid, "unknown action: %s", in.Action)
	}
}

// BulkPatchVariants patches the allow-listed fields of up to
// MaxBulkVariantIDs variants of one product in a single statement.
func (uc *BulkUsecase) BulkPatchVariants(ctx context.Context, productID int64, in *BulkVariantsInput) (int64, error) {
	if len(in.VariantIDs) == 0 {
		return 0, domain.ValidationError(domain.CodeVariantIDsRequired, "variant_ids is required")
	}
	if len(in.VariantIDs) > domain.MaxBulkVariantIDs {
		return 0, domain.ValidationError(domain.CodeTooManyIDs,
			"at most %d variants per request", domain.MaxBulkVariantIDs)
	}

	patch, err := variantPatchFromUpdate(in.Update)
	if err != nil {
		return 0, err
	}
	if patch.IsZero() {
		return 0, domain.ValidationError(domain.CodeUpdateInvalid, "no updatable fields in payload")
	}

	patched, err := uc.repo.BulkPatchVariants(ctx, productID, in.VariantIDs, patch)
	if err != nil {
		return 0, domain.AsError(err)
	}
	return patched, nil
}

// variantPatchFromUpdate keeps only the allow-listed keys; anything else in
// the payload is silently dropped.
func variantPatchFromUpdate(update map[string]interface{}) (domain.VariantPatch, error) {
	var patch domain.VariantPatch

	if raw, ok := update["price"]; ok {
		price, ok := raw.(float64)
		if !ok || price <= 0 {
			return patch, domain.ValidationError(domain.CodePriceInvalid, "price must be greater than 0")
		}
		patch.Price = &price
	}
	if raw, ok := update["compare_price"]; ok {
		if v, ok := raw.(float64); ok {
			patch.ComparePrice = &v
		}
	}
	if raw, ok := update["cost_price"]; ok {
		v, ok := raw.(float64)
		if !ok || v < 0 {
			return patch, domain.ValidationError(domain.CodeCostInvalid, "cost_price must not be negative")
		}
		patch.CostPrice = &v
	}
	if raw, ok := update["stock"]; ok {
		v, ok := raw.(float64)
		if !ok || v < 0 {
			return patch, domain.ValidationError(domain.CodeStockInvalid, "stock must not be negative")
		}
		stock := int(v)
		patch.Stock = &stock
	}
	if raw, ok := update["status"]; ok {
		status, ok := raw.(string)
		if !ok || !domain.IsValidStatus(status) {
			return patch, domain.ValidationError(domain.CodeStatusInvalid, "invalid status")
		}
		patch.Status = &status
	}
	if raw, ok := update["manage_stock"]; ok {
		if v, ok := raw.(bool); ok {
			patch.ManageStock = &v
		}
	}
	if raw, ok := update["allow_backorder"]; ok {
		if v, ok := raw.(bool); ok {
			patch.AllowBackorder = &v
		}
	}
	if raw, ok := update["image_url"]; ok {
		if v, ok := raw.(string); ok {
			patch.ImageURL = &v
		}
	}
	return patch, nil
}

// intFromData reads a JSON number out of a decoded map.
func intFromData(data map[string]interface{}, key string) (int64, bool) {
	raw, ok := data[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}
