package httpapi

import (
	"expvar"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", app.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/", app.rootHandler).Methods(http.MethodGet)

	r.HandleFunc("/products", app.listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products", app.createProductHandler).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}", app.getProductHandler).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", app.updateProductHandler).Methods(http.MethodPut)
	r.HandleFunc("/products/{id}", app.deleteProductHandler).Methods(http.MethodDelete)

	r.HandleFunc("/debug/metrics", app.metricsHandler).Methods(http.MethodGet)
	r.Handle("/debug/vars", expvar.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/openapi.yaml", app.openapiHandler).Methods(http.MethodGet)
	r.HandleFunc("/docs", app.docsHandler).Methods(http.MethodGet)

	return WithRequestID(WithLogging(WithRecover(r)))
}
