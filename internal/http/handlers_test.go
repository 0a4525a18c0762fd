package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/product-catalog-service/internal/cache"
	"github.com/fairyhunter13/product-catalog-service/internal/catalog"
	"github.com/fairyhunter13/product-catalog-service/internal/config"
	"github.com/fairyhunter13/product-catalog-service/internal/model"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
	"github.com/fairyhunter13/product-catalog-service/internal/store"
)

// recordingBus captures what the handlers publish.
type recordingBus struct {
	keys   []string
	bodies [][]byte
	fail   bool
}

func (b *recordingBus) Publish(_ context.Context, _, routingKey string, body []byte) error {
	if b.fail {
		return assert.AnError
	}
	b.keys = append(b.keys, routingKey)
	b.bodies = append(b.bodies, body)
	return nil
}

func setupApp(t *testing.T) (http.Handler, *recordingBus) {
	t.Helper()
	obs.InitLogger()
	cfg := config.Config{HTTPAddr: ":8080", CacheTTL: time.Minute}
	b := &recordingBus{}
	ctl := catalog.New(store.NewMemory(), cache.NewMemory(cfg.CacheTTL), b, cfg.CacheTTL)
	return NewRouter(NewApp(cfg, ctl)), b
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeProduct(t *testing.T, body []byte) model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, json.Unmarshal(body, &p))
	return p
}

func TestHealth(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Healthy", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestRoot(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "Go API is running", m["Message"])
	assert.Contains(t, m, "Timestamp")
}

func TestCreateThenReadThenList(t *testing.T) {
	h, b := setupApp(t)

	w := doJSON(t, h, http.MethodPost, "/products", `{"name":"A","price":1.50,"stock":3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeProduct(t, w.Body.Bytes())
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "A", created.Name)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("1.50")))
	assert.Equal(t, int64(3), created.Stock)

	w = doJSON(t, h, http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeProduct(t, w.Body.Bytes())
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.Price.Equal(created.Price))

	w = doJSON(t, h, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)

	require.Equal(t, []string{"product.created"}, b.keys)
}

func TestCreateIgnoresBodyID(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodPost, "/products", `{"id":999,"name":"A","price":1,"stock":1}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeProduct(t, w.Body.Bytes())
	assert.Equal(t, int64(1), created.ID, "store assigns the id, body id is ignored")
}

func TestCreateValidation(t *testing.T) {
	h, b := setupApp(t)
	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"price":1.50,"stock":3}`},
		{"missing price", `{"name":"A","stock":3}`},
		{"missing stock", `{"name":"A","price":1.50}`},
		{"empty name", `{"name":"","price":1.50,"stock":3}`},
		{"negative price", `{"name":"A","price":-1,"stock":3}`},
		{"negative stock", `{"name":"A","price":1,"stock":-3}`},
		{"unknown field", `{"name":"A","price":1,"stock":3,"foo":1}`},
		{"malformed number", `{"name":"A","price":"abc","stock":3}`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/products", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, b.keys, "rejected requests must not publish")
}

func TestCreateRejectsWrongContentType(t *testing.T) {
	h, _ := setupApp(t)
	r := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"A","price":1,"stock":1}`))
	r.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestUpdate(t *testing.T) {
	h, b := setupApp(t)
	w := doJSON(t, h, http.MethodPost, "/products", `{"name":"A","price":1.50,"stock":3}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPut, "/products/1", `{"name":"A","price":2.00,"stock":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeProduct(t, w.Body.Bytes())
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("2.00")))

	w = doJSON(t, h, http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeProduct(t, w.Body.Bytes())
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.00")))

	require.Equal(t, []string{"product.created", "product.updated"}, b.keys)
	// The event payload equals the response body seen by the client.
	var fromEvent model.Product
	require.NoError(t, json.Unmarshal(b.bodies[1], &fromEvent))
	assert.Equal(t, updated.ID, fromEvent.ID)
	assert.True(t, fromEvent.Price.Equal(updated.Price))
}

func TestUpdatePartialBodyKeepsOtherFields(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodPost, "/products", `{"name":"A","price":1.50,"stock":3}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPut, "/products/1", `{"price":9.99}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeProduct(t, w.Body.Bytes())
	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, int64(3), updated.Stock)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("9.99")))
}

func TestUpdateValidation(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodPost, "/products", `{"name":"A","price":1,"stock":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPut, "/products/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, h, http.MethodPut, "/products/1", `{"price":-2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateNotFound(t *testing.T) {
	h, b := setupApp(t)
	w := doJSON(t, h, http.MethodPut, "/products/999", `{"name":"X","price":1,"stock":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, b.keys)
}

func TestDelete(t *testing.T) {
	h, b := setupApp(t)
	w := doJSON(t, h, http.MethodPost, "/products", `{"name":"A","price":1.50,"stock":3}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = doJSON(t, h, http.MethodGet, "/products/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, []string{"product.created", "product.deleted"}, b.keys)
	assert.JSONEq(t, `{"Id":1}`, string(b.bodies[1]))
}

func TestDeleteNotFound(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodDelete, "/products/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetNotFound(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodGet, "/products/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMalformedID(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodGet, "/products/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBusOutageStillCreates(t *testing.T) {
	h, b := setupApp(t)
	b.fail = true
	w := doJSON(t, h, http.MethodPost, "/products", `{"name":"A","price":1.50,"stock":3}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodGet, "/products/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsHandler(t *testing.T) {
	h, _ := setupApp(t)
	doJSON(t, h, http.MethodPost, "/products", `{"name":"A","price":1,"stock":1}`)
	doJSON(t, h, http.MethodGet, "/products/1", "")
	doJSON(t, h, http.MethodGet, "/products/1", "")

	w := doJSON(t, h, http.MethodGet, "/debug/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Contains(t, m, "cache_hits")
	assert.Contains(t, m, "cache_misses")
	assert.Contains(t, m, "events_published")
	assert.EqualValues(t, 1, m["events_published"])
}

func TestOpenAPIServed(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi:")
}

func TestDocsServed(t *testing.T) {
	h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}

func TestRequestIDEchoed(t *testing.T) {
	h, _ := setupApp(t)
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("X-Request-Id", "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))
}
