package v1

import (
	"net/http"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/usecase"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/utils"
)

// CatalogHandler serves the public storefront reads. Only active, non-deleted
// products are visible here.
type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, page := listPage(q)
	filter := domain.ProductListFilter{
		Query:  q.Get("search"),
		Status: domain.StatusActive,
		Brand:  q.Get("brand"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if cat := utils.ParseInt64(q.Get("category_id")); cat > 0 {
		filter.CategoryID = &cat
	}
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

func (h *CatalogHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		utils.WriteJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			ErrorCode: domain.CodeNotFound, Message: "Invalid slug",
		})
		return
	}

	product, err := h.catalogUC.GetProductBySlug(r.Context(), slug)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    product,
	})
}
