package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
)

// fakeRepo is an in-memory CatalogRepository. fakeTxManager snapshots it
// before each Do and restores the snapshot on error, mimicking rollback.
type fakeRepo struct {
	nextID int64

	products map[int64]*domain.Product
	media    map[int64][]domain.ProductMedia

	attrs      map[int64]*domain.ProductAttribute
	attrOrder  map[int64][]int64 // productID -> attribute ids
	attrValues map[int64][]domain.AttributeValue

	variants     map[int64]*domain.ProductVariant
	variantOrder map[int64][]int64 // productID -> variant ids
	junction     map[int64][]domain.VariantAttributeValue

	orderedVariants map[int64]bool // variant ids referenced by order items
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:        map[int64]*domain.Product{},
		media:           map[int64][]domain.ProductMedia{},
		attrs:           map[int64]*domain.ProductAttribute{},
		attrOrder:       map[int64][]int64{},
		attrValues:      map[int64][]domain.AttributeValue{},
		variants:        map[int64]*domain.ProductVariant{},
		variantOrder:    map[int64][]int64{},
		junction:        map[int64][]domain.VariantAttributeValue{},
		orderedVariants: map[int64]bool{},
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) clone() *fakeRepo {
	c := newFakeRepo()
	c.nextID = f.nextID
	for k, v := range f.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range f.media {
		c.media[k] = append([]domain.ProductMedia(nil), v...)
	}
	for k, v := range f.attrs {
		cp := *v
		c.attrs[k] = &cp
	}
	for k, v := range f.attrOrder {
		c.attrOrder[k] = append([]int64(nil), v...)
	}
	for k, v := range f.attrValues {
		c.attrValues[k] = append([]domain.AttributeValue(nil), v...)
	}
	for k, v := range f.variants {
		cp := *v
		c.variants[k] = &cp
	}
	for k, v := range f.variantOrder {
		c.variantOrder[k] = append([]int64(nil), v...)
	}
	for k, v := range f.junction {
		c.junction[k] = append([]domain.VariantAttributeValue(nil), v...)
	}
	for k, v := range f.orderedVariants {
		c.orderedVariants[k] = v
	}
	return c
}

func (f *fakeRepo) restore(s *fakeRepo) {
	*f = *s
}

// --- Reads ---

func (f *fakeRepo) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Media = append([]domain.ProductMedia(nil), f.media[id]...)
	cp.Attributes = f.productAttributes(id)
	variants, _ := f.VariantsByProduct(context.Background(), id)
	cp.Variants = variants
	return &cp, nil
}

func (f *fakeRepo) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for id, p := range f.products {
		if p.Slug == slug && p.DeletedAt == nil {
			return f.GetProductByID(context.Background(), id)
		}
	}
	return nil, nil
}

func (f *fakeRepo) productAttributes(productID int64) []domain.ProductAttribute {
	out := []domain.ProductAttribute{}
	for _, attrID := range f.attrOrder[productID] {
		a := *f.attrs[attrID]
		a.Values = append([]domain.AttributeValue(nil), f.attrValues[attrID]...)
		out = append(out, a)
	}
	return out
}

func (f *fakeRepo) SlugExists(_ context.Context, slug string, excludeProductID int64) (bool, error) {
	for id, p := range f.products {
		if p.Slug == slug && id != excludeProductID && p.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) SKUsInUse(_ context.Context, skus []string, excludeVariantIDs []int64) ([]string, error) {
	excluded := map[int64]bool{}
	for _, id := range excludeVariantIDs {
		excluded[id] = true
	}
	var inUse []string
	for _, sku := range skus {
		for id, v := range f.variants {
			if v.SKU == sku && !excluded[id] {
				inUse = append(inUse, sku)
				break
			}
		}
	}
	return inUse, nil
}

func (f *fakeRepo) AttributeLookup(_ context.Context, productID int64) (*domain.AttributeLookup, error) {
	lookup := domain.NewAttributeLookup()
	for _, attrID := range f.attrOrder[productID] {
		a := f.attrs[attrID]
		lookup.AddAttribute(a.Name, attrID)
		for _, val := range f.attrValues[attrID] {
			lookup.AddValue(a.Name, val.Value, val.ID)
		}
	}
	return lookup, nil
}

func (f *fakeRepo) VariantsByProduct(_ context.Context, productID int64) ([]domain.ProductVariant, error) {
	out := []domain.ProductVariant{}
	for _, id := range f.variantOrder[productID] {
		v := *f.variants[id]
		v.AttributeValues = map[string]string{}
		for _, row := range f.junction[id] {
			attr := f.attrs[row.AttributeID]
			for _, val := range f.attrValues[row.AttributeID] {
				if val.ID == row.AttributeValueID {
					v.AttributeValues[attr.Name] = val.Value
				}
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeRepo) GetVariant(_ context.Context, productID, variantID int64) (*domain.ProductVariant, error) {
	v, ok := f.variants[variantID]
	if !ok || v.ProductID != productID {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f *fakeRepo) GetAttribute(_ context.Context, productID, attributeID int64) (*domain.ProductAttribute, error) {
	a, ok := f.attrs[attributeID]
	if !ok || a.ProductID != productID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) VariantsReferencedByOrders(_ context.Context, variantIDs []int64) (int64, error) {
	var count int64
	for _, id := range variantIDs {
		if f.orderedVariants[id] {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) List(_ context.Context, filter domain.ProductListFilter) ([]domain.ProductSummary, int64, error) {
	out := []domain.ProductSummary{}
	for id, p := range f.products {
		if p.DeletedAt != nil {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
			continue
		}
		variants, _ := f.VariantsByProduct(context.Background(), id)
		r := ComputeRollup(p, variants)
		out = append(out, domain.ProductSummary{
			ID:           id,
			Name:         p.Name,
			Slug:         p.Slug,
			SKU:          p.SKU,
			Status:       p.Status,
			VariantCount: r.VariantCount,
			PriceMin:     r.PriceMin,
			PriceMax:     r.PriceMax,
			StockTotal:   r.StockTotal,
		})
	}
	return out, int64(len(out)), nil
}

// --- Product writes ---

func (f *fakeRepo) InsertProduct(_ context.Context, p *domain.Product) error {
	for _, existing := range f.products {
		if existing.Slug == p.Slug && existing.DeletedAt == nil {
			return domain.ConflictError(domain.CodeSlugDuplicate, "Slug already exists")
		}
	}
	p.ID = f.id()
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateProductFields(_ context.Context, p *domain.Product) error {
	stored, ok := f.products[p.ID]
	if !ok {
		return nil
	}
	cp := *p
	cp.Price = stored.Price
	cp.SKU = stored.SKU
	cp.Stock = stored.Stock
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateProductAggregates(_ context.Context, productID int64, price float64, sku string, stock int) error {
	if p, ok := f.products[productID]; ok {
		p.Price = price
		p.SKU = sku
		p.Stock = stock
	}
	return nil
}

func (f *fakeRepo) SoftDeleteProduct(_ context.Context, id int64, at time.Time) (bool, error) {
	p, ok := f.products[id]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	p.DeletedAt = &at
	p.IsActive = false
	p.Status = domain.StatusInactive
	return true, nil
}

// --- Media ---

func (f *fakeRepo) ReplaceMedia(_ context.Context, productID int64, media []domain.ProductMedia) error {
	rows := make([]domain.ProductMedia, len(media))
	for i, m := range media {
		m.ID = f.id()
		rows[i] = m
	}
	f.media[productID] = rows
	return nil
}

// --- Attributes ---

func (f *fakeRepo) InsertAttribute(_ context.Context, a *domain.ProductAttribute) error {
	a.ID = f.id()
	cp := *a
	f.attrs[a.ID] = &cp
	f.attrOrder[a.ProductID] = append(f.attrOrder[a.ProductID], a.ID)
	return nil
}

func (f *fakeRepo) RenameAttribute(_ context.Context, attributeID int64, name string) error {
	if a, ok := f.attrs[attributeID]; ok {
		a.Name = name
	}
	return nil
}

func (f *fakeRepo) ReplaceAttributeValues(_ context.Context, attributeID int64, values []string) ([]domain.AttributeValue, error) {
	out := make([]domain.AttributeValue, len(values))
	for i, value := range values {
		out[i] = domain.AttributeValue{ID: f.id(), AttributeID: attributeID, Value: value}
	}
	f.attrValues[attributeID] = out
	return append([]domain.AttributeValue(nil), out...), nil
}

func (f *fakeRepo) DeleteAttributes(_ context.Context, productID int64, ids []int64) error {
	doomed := map[int64]bool{}
	for _, id := range ids {
		if a, ok := f.attrs[id]; ok && a.ProductID == productID {
			doomed[id] = true
			delete(f.attrs, id)
			delete(f.attrValues, id)
		}
	}
	order := f.attrOrder[productID][:0]
	for _, id := range f.attrOrder[productID] {
		if !doomed[id] {
			order = append(order, id)
		}
	}
	f.attrOrder[productID] = order

	// Cascade: junction rows of deleted attributes disappear with them.
	for variantID, rows := range f.junction {
		kept := rows[:0]
		for _, row := range rows {
			if !doomed[row.AttributeID] {
				kept = append(kept, row)
			}
		}
		f.junction[variantID] = kept
	}
	return nil
}

// --- Variants ---

func (f *fakeRepo) InsertVariant(_ context.Context, v *domain.ProductVariant) error {
	for _, existing := range f.variants {
		if existing.SKU == v.SKU {
			return domain.ConflictError(domain.CodeSKUDuplicate, "SKU already exists")
		}
	}
	v.ID = f.id()
	cp := *v
	f.variants[v.ID] = &cp
	f.variantOrder[v.ProductID] = append(f.variantOrder[v.ProductID], v.ID)
	return nil
}

func (f *fakeRepo) UpdateVariant(_ context.Context, v *domain.ProductVariant) error {
	if stored, ok := f.variants[v.ID]; ok && stored.ProductID == v.ProductID {
		cp := *v
		f.variants[v.ID] = &cp
	}
	return nil
}

func (f *fakeRepo) DeleteVariants(_ context.Context, productID int64, ids []int64) error {
	doomed := map[int64]bool{}
	for _, id := range ids {
		if v, ok := f.variants[id]; ok && v.ProductID == productID {
			doomed[id] = true
			delete(f.variants, id)
			delete(f.junction, id)
		}
	}
	order := f.variantOrder[productID][:0]
	for _, id := range f.variantOrder[productID] {
		if !doomed[id] {
			order = append(order, id)
		}
	}
	f.variantOrder[productID] = order
	return nil
}

func (f *fakeRepo) ReplaceVariantAttributeValues(_ context.Context, variantID int64, rows []domain.VariantAttributeValue) error {
	f.junction[variantID] = append([]domain.VariantAttributeValue(nil), rows...)
	return nil
}

// --- Bulk primitives ---

func (f *fakeRepo) SetProductStatus(_ context.Context, id int64, status string) (bool, error) {
	p, ok := f.products[id]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	p.Status = status
	p.IsActive = status == domain.StatusActive
	return true, nil
}

func (f *fakeRepo) SetProductCategory(_ context.Context, id int64, categoryID int64) (bool, error) {
	p, ok := f.products[id]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	p.CategoryID = categoryID
	return true, nil
}

func (f *fakeRepo) SetProductAffiliate(_ context.Context, id int64, affiliate int64) (bool, error) {
	p, ok := f.products[id]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	p.Affiliate = &affiliate
	return true, nil
}

func (f *fakeRepo) BulkPatchVariants(_ context.Context, productID int64, variantIDs []int64, patch domain.VariantPatch) (int64, error) {
	var patched int64
	for _, id := range variantIDs {
		v, ok := f.variants[id]
		if !ok || v.ProductID != productID {
			continue
		}
		if patch.Price != nil {
			v.Price = *patch.Price
		}
		if patch.ComparePrice != nil {
			v.ComparePrice = patch.ComparePrice
		}
		if patch.CostPrice != nil {
			v.CostPrice = patch.CostPrice
		}
		if patch.Stock != nil {
			v.Stock = *patch.Stock
		}
		if patch.Status != nil {
			v.Status = *patch.Status
			v.IsActive = *patch.Status == domain.StatusActive
		}
		if patch.ManageStock != nil {
			v.ManageStock = *patch.ManageStock
		}
		if patch.AllowBackorder != nil {
			v.AllowBackorder = *patch.AllowBackorder
		}
		if patch.ImageURL != nil {
			v.ImageURL = patch.ImageURL
		}
		patched++
	}
	return patched, nil
}

// fakeTxManager snapshots the repo before fn and restores it when fn fails.
type fakeTxManager struct {
	repo *fakeRepo
}

func (tm *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := tm.repo.clone()
	if err := fn(ctx); err != nil {
		tm.repo.restore(snapshot)
		return err
	}
	return nil
}

// fakeCache is a TTL-less map cache.
type fakeCache struct {
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]interface{}{}}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.items[key] = value
}

func (c *fakeCache) Delete(key string) {
	delete(c.items, key)
}

func (c *fakeCache) Flush() {
	c.items = map[string]interface{}{}
}
