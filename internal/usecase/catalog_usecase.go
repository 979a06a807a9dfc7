package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/cache"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/logger"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/utils"
)

// CatalogUsecase is the catalog consistency engine: it owns every create and
// update of products, variants, attributes and their junction rows, always
// inside one transaction, and keeps the cached aggregates in sync.
type CatalogUsecase struct {
	repo      domain.CatalogRepository
	txManager domain.TransactionManager
	cache     cache.CacheService
	detailTTL time.Duration
}

func NewCatalogUsecase(repo domain.CatalogRepository, tx domain.TransactionManager, cache cache.CacheService, detailTTL time.Duration) *CatalogUsecase {
	return &CatalogUsecase{
		repo:      repo,
		txManager: tx,
		cache:     cache,
		detailTTL: detailTTL,
	}
}

// CreateProduct validates the payload against a snapshot of the store, then
// persists product, media, attributes, values, variants and junction rows in
// one transaction. Aggregate fields are derived from the variant specs up
// front: price = cheapest variant, sku = first variant, stock = summed.
func (uc *CatalogUsecase) CreateProduct(ctx context.Context, in *CreateProductInput) (*domain.Product, error) {
	if err := validateCreatePayload(in); err != nil {
		return nil, err
	}
	if in.Slug == "" {
		in.Slug = utils.GenerateSlug(in.Name)
	}

	taken, err := uc.repo.SlugExists(ctx, in.Slug, 0)
	if err != nil {
		return nil, domain.InternalError(err)
	}
	if taken {
		return nil, domain.ConflictError(domain.CodeSlugDuplicate, "Slug already exists")
	}

	inUse, err := uc.repo.SKUsInUse(ctx, variantSKUs(in.Variants), nil)
	if err != nil {
		return nil, domain.InternalError(err)
	}
	if len(inUse) > 0 {
		return nil, domain.ConflictError(domain.CodeSKUDuplicate, "SKU already exists: %s", inUse[0])
	}

	now := time.Now()
	status := in.Status
	if status == "" {
		status = domain.StatusActive
	}

	product := &domain.Product{
		Name:             in.Name,
		Slug:             in.Slug,
		ShortDescription: in.ShortDescription,
		Description:      in.Description,
		Status:           status,
		Featured:         in.Featured,
		CategoryID:       in.CategoryID,
		Brand:            in.Brand,
		PetType:          in.PetType,
		Season:           in.Season,
		Tags:             in.Tags,
		HasVariants:      in.HasVariants,
		IsActive:         status == domain.StatusActive,
		Weight:           in.Shipping.Weight,
		Length:           in.Shipping.Length,
		Width:            in.Shipping.Width,
		Height:           in.Shipping.Height,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Back-compat aggregates derived from the specs before anything persists.
	product.Price = in.Variants[0].Price
	for _, v := range in.Variants {
		if v.Price < product.Price {
			product.Price = v.Price
		}
		product.Stock += v.Stock
	}
	product.SKU = in.Variants[0].SKU

	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		if err := uc.repo.InsertProduct(ctx, product); err != nil {
			return err
		}

		if err := uc.repo.ReplaceMedia(ctx, product.ID, mediaRows(product.ID, in.Media)); err != nil {
			return err
		}

		// Attributes first: junction rows below need their ids.
		lookup := domain.NewAttributeLookup()
		for _, attr := range in.Attributes {
			a := &domain.ProductAttribute{ProductID: product.ID, Name: attr.Name}
			if err := uc.repo.InsertAttribute(ctx, a); err != nil {
				return err
			}
			lookup.AddAttribute(attr.Name, a.ID)

			values, err := uc.repo.ReplaceAttributeValues(ctx, a.ID, attr.Values)
			if err != nil {
				return err
			}
			for _, val := range values {
				lookup.AddValue(attr.Name, val.Value, val.ID)
			}
		}

		for _, spec := range in.Variants {
			variant := variantFromInput(product.ID, spec)
			if err := uc.repo.InsertVariant(ctx, variant); err != nil {
				return err
			}
			if err := uc.linkVariantAttributes(ctx, variant.ID, spec.AttributeValues, lookup); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, domain.AsError(err)
	}
	return product, nil
}

// UpdateProduct reconciles the payload against persisted state: fields and
// relations absent from the payload are left untouched, present ones
// overwrite or upsert, and explicit deleted-id lists remove. Everything runs
// in one transaction; any failure rolls the whole update back.
func (uc *CatalogUsecase) UpdateProduct(ctx context.Context, productID int64, in *UpdateProductInput) error {
	product, err := uc.getLiveProduct(ctx, productID)
	if err != nil {
		return err
	}

	if in.Slug.Set && in.Slug.Value != "" {
		taken, err := uc.repo.SlugExists(ctx, in.Slug.Value, productID)
		if err != nil {
			return domain.InternalError(err)
		}
		if taken {
			return domain.ConflictError(domain.CodeSlugDuplicate, "Slug already exists")
		}
	}
	if in.Status.Set && !domain.IsValidStatus(in.Status.Value) {
		return domain.ValidationError(domain.CodeStatusInvalid, "invalid status: %s", in.Status.Value)
	}
	if in.Variants.Set {
		if err := validateVariantSpecs(in.Variants.Value); err != nil {
			return err
		}
		inUse, err := uc.repo.SKUsInUse(ctx, variantSKUs(in.Variants.Value), existingVariantIDs(in.Variants.Value))
		if err != nil {
			return domain.InternalError(err)
		}
		if len(inUse) > 0 {
			return domain.ConflictError(domain.CodeSKUDuplicate, "SKU already exists: %s", inUse[0])
		}
	}

	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		applyScalarUpdates(product, in)
		product.UpdatedAt = time.Now()
		if err := uc.repo.UpdateProductFields(ctx, product); err != nil {
			return err
		}

		if in.Media.Set {
			if err := uc.repo.ReplaceMedia(ctx, productID, mediaRows(productID, in.Media.Value)); err != nil {
				return err
			}
		}

		if len(in.DeletedAttributeIDs) > 0 {
			if err := uc.repo.DeleteAttributes(ctx, productID, in.DeletedAttributeIDs); err != nil {
				return err
			}
		}

		lookup, err := uc.syncAttributes(ctx, productID, in)
		if err != nil {
			return err
		}

		if len(in.DeletedVariantIDs) > 0 {
			refs, err := uc.repo.VariantsReferencedByOrders(ctx, in.DeletedVariantIDs)
			if err != nil {
				return err
			}
			if refs > 0 {
				return domain.ConflictError(domain.CodeVariantHasOrders,
					"Cannot delete variant that has order items")
			}
			if err := uc.repo.DeleteVariants(ctx, productID, in.DeletedVariantIDs); err != nil {
				return err
			}
		}

		if in.Variants.Set {
			if err := uc.syncVariants(ctx, productID, in.Variants.Value, lookup); err != nil {
				return err
			}
		}

		// Refresh cached aggregates from whatever variant set survived.
		refreshed, err := uc.repo.VariantsByProduct(ctx, productID)
		if err != nil {
			return err
		}
		rollup := ComputeRollup(product, refreshed)
		sku := product.SKU
		if len(refreshed) > 0 {
			sku = refreshed[0].SKU
		}
		return uc.repo.UpdateProductAggregates(ctx, productID, rollup.PriceMin, sku, rollup.StockTotal)
	})
	if err != nil {
		return domain.AsError(err)
	}

	uc.cache.Delete(detailCacheKey(product.Slug))
	return nil
}

// syncAttributes upserts the payload's attributes and returns the lookup the
// variant junction rows resolve against. When the payload does not touch
// attributes, the lookup is loaded from the store instead.
func (uc *CatalogUsecase) syncAttributes(ctx context.Context, productID int64, in *UpdateProductInput) (*domain.AttributeLookup, error) {
	if !in.Attributes.Set {
		return uc.repo.AttributeLookup(ctx, productID)
	}

	lookup := domain.NewAttributeLookup()
	for _, attr := range in.Attributes.Value {
		var attrID int64
		if ref := attr.Ref(); ref.Exists {
			existing, err := uc.repo.GetAttribute(ctx, productID, ref.ID)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, domain.ValidationError(domain.CodeAttributeNotFound,
					"Attribute not found: %d", ref.ID)
			}
			if err := uc.repo.RenameAttribute(ctx, ref.ID, attr.Name); err != nil {
				return nil, err
			}
			attrID = ref.ID
		} else {
			a := &domain.ProductAttribute{ProductID: productID, Name: attr.Name}
			if err := uc.repo.InsertAttribute(ctx, a); err != nil {
				return nil, err
			}
			attrID = a.ID
		}
		lookup.AddAttribute(attr.Name, attrID)

		values, err := uc.repo.ReplaceAttributeValues(ctx, attrID, attr.Values)
		if err != nil {
			return nil, err
		}
		for _, val := range values {
			lookup.AddValue(attr.Name, val.Value, val.ID)
		}
	}
	return lookup, nil
}

// syncVariants upserts the payload's variants and rebuilds each one's
// junction rows from its attribute_values map.
func (uc *CatalogUsecase) syncVariants(ctx context.Context, productID int64, specs []VariantInput, lookup *domain.AttributeLookup) error {
	for _, spec := range specs {
		variant := variantFromInput(productID, spec)
		if ref := spec.Ref(); ref.Exists {
			existing, err := uc.repo.GetVariant(ctx, productID, ref.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ValidationError(domain.CodeVariantNotFound, "Variant not found: %d", ref.ID)
			}
			variant.ID = ref.ID
			if err := uc.repo.UpdateVariant(ctx, variant); err != nil {
				return err
			}
		} else {
			if err := uc.repo.InsertVariant(ctx, variant); err != nil {
				return err
			}
		}
		if err := uc.linkVariantAttributes(ctx, variant.ID, spec.AttributeValues, lookup); err != nil {
			return err
		}
	}
	return nil
}

// linkVariantAttributes replaces the variant's junction rows, resolving each
// {name: value} pair against the lookup. An unresolvable pair fails the
// whole transaction; partial junction state is never committed.
func (uc *CatalogUsecase) linkVariantAttributes(ctx context.Context, variantID int64, chosen map[string]string, lookup *domain.AttributeLookup) error {
	rows := make([]domain.VariantAttributeValue, 0, len(chosen))
	for attrName, value := range chosen {
		attrID, valueID, ok := lookup.Resolve(attrName, value)
		if !ok {
			if !lookup.HasAttribute(attrName) {
				return domain.ValidationError(domain.CodeAttributeInvalid,
					"Unknown attribute: %s", attrName)
			}
			return domain.ValidationError(domain.CodeAttributeValueInvalid,
				"Invalid value for %s: %s", attrName, value)
		}
		rows = append(rows, domain.VariantAttributeValue{
			VariantID:        variantID,
			AttributeID:      attrID,
			AttributeValueID: valueID,
		})
	}
	return uc.repo.ReplaceVariantAttributeValues(ctx, variantID, rows)
}

// GetProductDetail returns the hydrated product for the admin editor.
func (uc *CatalogUsecase) GetProductDetail(ctx context.Context, productID int64) (*domain.Product, error) {
	return uc.getLiveProduct(ctx, productID)
}

// SoftDeleteProduct marks the product removed without touching its rows, so
// historical order references stay valid.
func (uc *CatalogUsecase) SoftDeleteProduct(ctx context.Context, productID int64) error {
	product, err := uc.getLiveProduct(ctx, productID)
	if err != nil {
		return err
	}

	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		found, err := uc.repo.SoftDeleteProduct(ctx, productID, time.Now())
		if err != nil {
			return err
		}
		if !found {
			return domain.NotFoundError("Product not found")
		}
		return nil
	})
	if err != nil {
		return domain.AsError(err)
	}

	uc.cache.Delete(detailCacheKey(product.Slug))
	return nil
}

// ListProducts runs the admin listing. Stock status buckets are computed
// from the aggregate the same way the rollup calculator does, so list rows
// and detail rollups can never disagree.
func (uc *CatalogUsecase) ListProducts(ctx context.Context, filter domain.ProductListFilter) ([]domain.ProductSummary, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	summaries, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, domain.InternalError(err)
	}
	for i := range summaries {
		summaries[i].StockStatus = StockStatusFor(summaries[i].StockTotal)
	}
	return summaries, total, nil
}

// GetProductBySlug is the public read path, cache-aside like the category
// tree in the old storefront.
func (uc *CatalogUsecase) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	key := detailCacheKey(slug)
	if val, found := uc.cache.Get(key); found {
		return val.(*domain.Product), nil
	}

	product, err := uc.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, domain.InternalError(err)
	}
	if product == nil || product.DeletedAt != nil {
		return nil, domain.NotFoundError("Product not found")
	}

	uc.cache.Set(key, product, uc.detailTTL)
	return product, nil
}

func (uc *CatalogUsecase) getLiveProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := uc.repo.GetProductByID(ctx, productID)
	if err != nil {
		logger.Error().Err(err).Int64("product_id", productID).Msg("catalog: product fetch failed")
		return nil, domain.InternalError(err)
	}
	if product == nil || product.DeletedAt != nil {
		return nil, domain.NotFoundError("Product not found")
	}
	return product, nil
}

func applyScalarUpdates(p *domain.Product, in *UpdateProductInput) {
	if in.Name.Set {
		p.Name = in.Name.Value
	}
	if in.Slug.Set && in.Slug.Value != "" {
		p.Slug = in.Slug.Value
	}
	if in.ShortDescription.Set {
		p.ShortDescription = &in.ShortDescription.Value
	}
	if in.Description.Set {
		p.Description = &in.Description.Value
	}
	if in.Status.Set {
		p.Status = in.Status.Value
		p.IsActive = in.Status.Value == domain.StatusActive
	}
	if in.Featured.Set {
		p.Featured = in.Featured.Value
	}
	if in.CategoryID.Set {
		p.CategoryID = in.CategoryID.Value
	}
	if in.Brand.Set {
		p.Brand = &in.Brand.Value
	}
	if in.PetType.Set {
		p.PetType = &in.PetType.Value
	}
	if in.Season.Set {
		p.Season = &in.Season.Value
	}
	if in.Tags.Set {
		p.Tags = in.Tags.Value
	}
	if in.HasVariants.Set {
		p.HasVariants = in.HasVariants.Value
	}
	if in.Shipping.Set {
		p.Weight = in.Shipping.Value.Weight
		p.Length = in.Shipping.Value.Length
		p.Width = in.Shipping.Value.Width
		p.Height = in.Shipping.Value.Height
	}
}

func variantFromInput(productID int64, in VariantInput) *domain.ProductVariant {
	status := in.Status
	if status == "" {
		status = domain.StatusActive
	}
	return &domain.ProductVariant{
		ProductID:       productID,
		SKU:             in.SKU,
		Price:           in.Price,
		ComparePrice:    in.ComparePrice,
		CostPrice:       in.CostPrice,
		Stock:           in.Stock,
		ManageStock:     in.ManageStock,
		AllowBackorder:  in.AllowBackorder,
		Status:          status,
		IsActive:        status == domain.StatusActive,
		ImageURL:        in.ImageURL,
		AttributeValues: in.AttributeValues,
	}
}

func mediaRows(productID int64, media []MediaInput) []domain.ProductMedia {
	rows := make([]domain.ProductMedia, len(media))
	for i, m := range media {
		mediaType := m.Type
		if mediaType == "" {
			mediaType = domain.MediaTypeImage
		}
		rows[i] = domain.ProductMedia{
			ProductID: productID,
			URL:       m.URL,
			Type:      mediaType,
			SortOrder: m.SortOrder,
			// Inherited quirk: slot 1, not slot 0, is primary.
			IsPrimary: m.SortOrder == 1,
		}
	}
	return rows
}

func detailCacheKey(slug string) string {
	return fmt.Sprintf("product:slug:%s", slug)
}
