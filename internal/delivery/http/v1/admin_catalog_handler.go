package v1

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/usecase"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/logger"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminCatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
	bulkUC    *usecase.BulkUsecase
}

func NewAdminCatalogHandler(catalogUC *usecase.CatalogUsecase, bulkUC *usecase.BulkUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalogUC: catalogUC, bulkUC: bulkUC}
}

// writeDomainError renders the stable {error_code, message} body. Internal
// errors are logged with their cause and reported opaquely.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	de := domain.AsError(err)
	if de.Kind == domain.KindInternal {
		logger.WithContext(r.Context()).Error().Err(err).
			Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		utils.WriteJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			ErrorCode: domain.CodeInternalError,
			Message:   "Internal server error",
		})
		return
	}
	utils.WriteJSON(w, de.HTTPStatus(), domain.ErrorResponse{
		ErrorCode: de.Code,
		Message:   de.Message,
	})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// listPage clamps the paging params to the same bounds the list usecase
// applies, so the offset and total-pages math here always uses the effective
// limit. A zero or negative limit falls back to the default instead of
// reaching the division below.
func listPage(q url.Values) (limit, page int) {
	limit = utils.ParseInt(q.Get("limit"), 20)
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page = utils.ParseInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	return limit, page
}

func (h *AdminCatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeUpdateInvalid, Message: "Invalid JSON payload",
		})
		return
	}

	product, err := h.catalogUC.CreateProduct(r.Context(), &in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, domain.Response{
		Success: true,
		Message: "Product created",
		Data:    map[string]interface{}{"id": product.ID, "slug": product.Slug},
	})
}

func (h *AdminCatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeNotFound, Message: "Invalid product id",
		})
		return
	}

	var in usecase.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeUpdateInvalid, Message: "Invalid JSON payload",
		})
		return
	}

	if err := h.catalogUC.UpdateProduct(r.Context(), id, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Product updated",
	})
}

// variantView decorates a variant with derived pricing fields for the admin
// editor.
type variantView struct {
	domain.ProductVariant
	Profit        *float64 `json:"profit"`
	MarginPercent *float64 `json:"margin_percent"`
}

func (h *AdminCatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeNotFound, Message: "Invalid product id",
		})
		return
	}

	product, err := h.catalogUC.GetProductDetail(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	variants := make([]variantView, len(product.Variants))
	for i, v := range product.Variants {
		profit, margin := usecase.ProfitMargin(v.Price, v.CostPrice)
		variants[i] = variantView{ProductVariant: v, Profit: profit, MarginPercent: margin}
	}
	rollup := usecase.ComputeRollup(product, product.Variants)

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data: map[string]interface{}{
			"product":  product,
			"variants": variants,
			"rollup":   rollup,
		},
	})
}

func (h *AdminCatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeNotFound, Message: "Invalid product id",
		})
		return
	}

	if err := h.catalogUC.SoftDeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Product deleted",
	})
}

func (h *AdminCatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, page := listPage(q)
	filter := domain.ProductListFilter{
		Query:       q.Get("search"),
		Status:      q.Get("status"),
		Brand:       q.Get("brand"),
		StockStatus: q.Get("stock_status"),
		Sort:        q.Get("sort"),
		Order:       q.Get("order"),
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}

	if cat := utils.ParseInt64(q.Get("category_id")); cat > 0 {
		filter.CategoryID = &cat
	}
	filter.HasVariants = utils.ParseBoolPtr(q.Get("has_variants"))
	filter.Featured = utils.ParseBoolPtr(q.Get("featured"))
	filter.HasAffiliate = utils.ParseBoolPtr(q.Get("has_affiliate"))
	filter.PriceMin = utils.ParseFloatPtr(q.Get("price_min"))
	filter.PriceMax = utils.ParseFloatPtr(q.Get("price_max"))

	summaries, total, err := h.catalogUC.ListProducts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    summaries,
		Meta: domain.Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	})
}

func (h *AdminCatalogHandler) BulkProducts(w http.ResponseWriter, r *http.Request) {
	var in usecase.BulkProductsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeUpdateInvalid, Message: "Invalid JSON payload",
		})
		return
	}

	result, err := h.bulkUC.BulkMutateProducts(r.Context(), &in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": result.Updated,
		"failed":  result.Failed,
	})
}

func (h *AdminCatalogHandler) BulkVariants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeNotFound, Message: "Invalid product id",
		})
		return
	}

	var in usecase.BulkVariantsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeUpdateInvalid, Message: "Invalid JSON payload",
		})
		return
	}

	patched, err := h.bulkUC.BulkPatchVariants(r.Context(), id, &in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": patched,
	})
}

func (h *AdminCatalogHandler) GenerateVariants(w http.ResponseWriter, r *http.Request) {
	var in usecase.GenerateVariantsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeUpdateInvalid, Message: "Invalid JSON payload",
		})
		return
	}

	combos := usecase.GenerateVariantCombos(in.Attributes)
	variants := make([]map[string]interface{}, len(combos))
	for i, combo := range combos {
		variants[i] = map[string]interface{}{"attribute_values": combo}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"variants": variants})
}
