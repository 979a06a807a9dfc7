package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/usecase"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVariants(t *testing.T) {
	h := NewAdminCatalogHandler(nil, nil)

	t.Run("expands attribute matrix", func(t *testing.T) {
		body := `{"attributes":[
			{"name":"Size","values":["S","M"]},
			{"name":"Color","values":["Red","Blue"]}
		]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/generate-variants", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.GenerateVariants(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Variants []struct {
				AttributeValues map[string]string `json:"attribute_values"`
			} `json:"variants"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Variants, 4)
		assert.Equal(t, map[string]string{"Size": "S", "Color": "Red"},
			resp.Variants[0].AttributeValues)
	})

	t.Run("response body is the bare variants object", func(t *testing.T) {
		body := `{"attributes":[{"name":"Size","values":["S"]}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/generate-variants", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.GenerateVariants(rec, req)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.Contains(t, raw, "variants")
		assert.NotContains(t, raw, "data")
		assert.NotContains(t, raw, "success")
	})

	t.Run("attributes without values give empty list not null", func(t *testing.T) {
		body := `{"attributes":[{"name":"Size","values":[]}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/generate-variants", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.GenerateVariants(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"variants":[]`)
	})

	t.Run("bad payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/generate-variants", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		h.GenerateVariants(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// stubListRepo serves the listing endpoints only; every other repository
// method panics through the embedded nil interface.
type stubListRepo struct {
	domain.CatalogRepository
}

func (stubListRepo) List(ctx context.Context, filter domain.ProductListFilter) ([]domain.ProductSummary, int64, error) {
	return []domain.ProductSummary{}, 0, nil
}

func TestListProductsClampsLimit(t *testing.T) {
	uc := usecase.NewCatalogUsecase(stubListRepo{}, nil, nil, 0)
	admin := NewAdminCatalogHandler(uc, nil)
	public := NewCatalogHandler(uc)

	cases := []struct {
		name      string
		rawLimit  string
		wantLimit int
	}{
		{"zero falls back to default", "0", 20},
		{"negative falls back to default", "-5", 20},
		{"garbage falls back to default", "abc", 20},
		{"oversized is capped", "500", 100},
		{"in range passes through", "35", 35},
	}

	handlers := map[string]http.HandlerFunc{
		"admin":  admin.ListProducts,
		"public": public.ListProducts,
	}
	for hname, handle := range handlers {
		for _, tc := range cases {
			t.Run(hname+" "+tc.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit="+tc.rawLimit, nil)
				rec := httptest.NewRecorder()

				handle(rec, req)

				require.Equal(t, http.StatusOK, rec.Code)

				var resp struct {
					Meta domain.Pagination `json:"meta"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tc.wantLimit, resp.Meta.Limit)
				assert.Equal(t, 1, resp.Meta.Page)
				assert.Equal(t, 0, resp.Meta.TotalPages)
			})
		}
	}
}

func TestVariantViewFieldNames(t *testing.T) {
	profit, margin := 10.0, 40.0
	body, err := json.Marshal(variantView{Profit: &profit, MarginPercent: &margin})
	require.NoError(t, err)

	assert.Contains(t, string(body), `"profit":10`)
	assert.Contains(t, string(body), `"margin_percent":40`)
	assert.NotContains(t, string(body), `"margin":`)
}

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.ValidationError(domain.CodePriceInvalid, "price must be > 0"),
			http.StatusBadRequest, domain.CodePriceInvalid},
		{"conflict", domain.ConflictError(domain.CodeSlugDuplicate, "Slug already exists"),
			http.StatusConflict, domain.CodeSlugDuplicate},
		{"not found", domain.NotFoundError("Product not found"),
			http.StatusNotFound, domain.CodeNotFound},
		{"internal is opaque", assert.AnError,
			http.StatusInternalServerError, domain.CodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/products/1", nil)
			rec := httptest.NewRecorder()

			writeDomainError(rec, req, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body domain.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.ErrorCode)
			if tc.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, assert.AnError.Error())
			}
		})
	}
}
