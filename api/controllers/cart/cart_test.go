package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/streetfood/rawmart/api/middleware"
	cartsvc "github.com/streetfood/rawmart/internal/cart"
	"github.com/streetfood/rawmart/pkg/db/models"
	"github.com/streetfood/rawmart/pkg/types"
)

const session = "session_1700000000000_abcdefghi"

type materials map[int64]models.Material

func (m materials) FindMaterial(_ context.Context, id int64) (*models.Material, error) {
	material, ok := m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &material, nil
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := cartsvc.NewService(cartsvc.ServiceParams{
		Store: cartsvc.NewMemoryStore(),
		Materials: materials{
			42: {ID: 42, Name: "Fresh Tomatoes", Price: decimal.NewFromInt(45), GroupPrice: decimal.NewFromInt(38), Unit: "kg", InStock: true},
			4:  {ID: 4, Name: "Red Chili Powder", Price: decimal.NewFromInt(180), GroupPrice: decimal.NewFromInt(160), Unit: "kg"},
		},
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/cart/{sessionId}", func(r chi.Router) {
		r.Use(middleware.SessionContext(nil))
		r.Get("/", CartFetch(svc, nil))
		r.Delete("/", CartClear(svc, nil))
		r.Post("/items", CartAddItem(svc, nil))
		r.Put("/items/{lineId}", CartUpdateItem(svc, nil))
		r.Delete("/items/{lineId}", CartRemoveItem(svc, nil))
	})
	return r
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) types.CartView {
	t.Helper()
	var body struct {
		Data types.CartView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestCartLifecycle(t *testing.T) {
	router := newRouter(t)
	base := "/cart/" + session

	rec := do(router, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decodeCart(t, rec)
	assert.Empty(t, empty.Items)
	assert.Equal(t, session, empty.SessionID)

	rec = do(router, http.MethodPost, base+"/items", `{"material_id":42,"quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decodeCart(t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "90", view.Total.String())
	lineID := view.Items[0].ID

	rec = do(router, http.MethodPost, base+"/items", `{"material_id":42,"quantity":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "225", decodeCart(t, rec).Total.String())

	rec = do(router, http.MethodPost, base+"/items", `{"material_id":42,"is_group":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	view = decodeCart(t, rec)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 6, view.Count)

	rec = do(router, http.MethodPut, base+"/items/"+lineID, `{"quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "83", decodeCart(t, rec).Total.String())

	rec = do(router, http.MethodPut, base+"/items/"+lineID, `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeCart(t, rec)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].IsGroup)

	rec = do(router, http.MethodDelete, base+"/items/"+view.Items[0].ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)

	do(router, http.MethodPost, base+"/items", `{"material_id":42,"quantity":1}`)
	rec = do(router, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeCart(t, rec)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestCartErrors(t *testing.T) {
	router := newRouter(t)
	base := "/cart/" + session

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"bad body", http.MethodPost, base + "/items", `{"material_id":"x"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"zero quantity", http.MethodPost, base + "/items", `{"material_id":42,"quantity":0}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown material", http.MethodPost, base + "/items", `{"material_id":9}`, http.StatusNotFound, "NOT_FOUND"},
		{"out of stock", http.MethodPost, base + "/items", `{"material_id":4}`, http.StatusConflict, "CONFLICT"},
		{"missing quantity", http.MethodPut, base + "/items/abc", `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown line", http.MethodPut, base + "/items/7d4f5a0e-0000-4000-8000-000000000000", `{"quantity":2}`, http.StatusNotFound, "NOT_FOUND"},
		{"remove unknown line", http.MethodDelete, base + "/items/nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"bad session", http.MethodGet, "/cart/bad%20session", "", http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestHandlersWithoutService(t *testing.T) {
	rec := httptest.NewRecorder()
	CartFetch(nil, nil)(rec, httptest.NewRequest(http.MethodGet, "/cart/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
