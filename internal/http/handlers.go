package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/product-catalog-service/internal/catalog"
	"github.com/fairyhunter13/product-catalog-service/internal/config"
	httpopenapi "github.com/fairyhunter13/product-catalog-service/internal/http/openapi"
	"github.com/fairyhunter13/product-catalog-service/internal/model"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
)

// App bundles the handler dependencies.
type App struct {
	Cfg     config.Config
	Catalog *catalog.Controller
	started time.Time
}

// NewApp constructs an App around the given controller.
func NewApp(cfg config.Config, ctl *catalog.Controller) *App {
	return &App{Cfg: cfg, Catalog: ctl, started: time.Now()}
}

// productBody is the wire form of a product in request bodies. Pointer fields
// distinguish absent from zero; id is accepted and ignored.
type productBody struct {
	ID    int64            `json:"id"`
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Stock *int64           `json:"stock"`
}

// decodeProductBody parses the request body. On failure the error response
// has already been written and ok is false.
func decodeProductBody(w http.ResponseWriter, r *http.Request) (productBody, bool) {
	var b productBody
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return b, false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return b, false
	}
	if dec.More() {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", "trailing data after JSON body")
		return b, false
	}
	return b, true
}

// validate reports the first problem with the non-nil fields, or "".
func (b productBody) validate() string {
	if b.Name != nil && *b.Name == "" {
		return "name must not be empty"
	}
	if b.Price != nil && b.Price.IsNegative() {
		return "price must be >= 0"
	}
	if b.Stock != nil && *b.Stock < 0 {
		return "stock must be >= 0"
	}
	return ""
}

func (a *App) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "Healthy")
}

func (a *App) rootHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"Message":   "Go API is running",
		"Timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := a.Catalog.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := a.Catalog.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeProductBody(w, r)
	if !ok {
		return
	}
	if b.Name == nil || b.Price == nil || b.Stock == nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name, price and stock are required")
		return
	}
	if msg := b.validate(); msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	draft := model.Product{Name: *b.Name, Price: *b.Price, Stock: *b.Stock}
	p, err := a.Catalog.Create(r.Context(), draft)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	obs.Logger.Info("product_created", "id", p.ID, "request_id", RequestIDFromContext(r.Context()))
	WriteJSON(w, http.StatusCreated, p)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, okBody := decodeProductBody(w, r)
	if !okBody {
		return
	}
	if msg := b.validate(); msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	patch := model.ProductPatch{Name: b.Name, Price: b.Price, Stock: b.Stock}
	if patch.Empty() {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "at least one of name, price, stock is required")
		return
	}
	p, err := a.Catalog.Update(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	obs.Logger.Info("product_updated", "id", p.ID, "request_id", RequestIDFromContext(r.Context()))
	WriteJSON(w, http.StatusOK, p)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.Catalog.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	obs.Logger.Info("product_deleted", "id", id, "request_id", RequestIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) metricsHandler(w http.ResponseWriter, _ *http.Request) {
	hits, misses, published, dropped := a.Catalog.Metrics()
	WriteJSON(w, http.StatusOK, map[string]any{
		"cache_hits":       hits,
		"cache_misses":     misses,
		"events_published": published,
		"events_dropped":   dropped,
		"uptime_sec":       time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}

// pathID parses the {id} path variable; a malformed id is a 404, matching the
// route constraint.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return 0, false
	}
	return id, true
}
