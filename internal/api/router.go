package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/bluetrace-go/internal/api/handler"
	"github.com/mcoot/bluetrace-go/internal/middleware"
	"github.com/mcoot/bluetrace-go/internal/services/block"
	"github.com/mcoot/bluetrace-go/internal/services/reconcile"
)

// RouterConfig holds configuration for the ops API router
type RouterConfig struct {
	Logger     *slog.Logger
	Reconciler *reconcile.Service
	Blocks     *block.Registry
}

// NewRouter creates the ops API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	tracingHandler := handler.NewTracingHandler(cfg.Reconciler, cfg.Blocks)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", tracingHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/contacts", tracingHandler.Contacts).Methods(http.MethodGet)
	api.HandleFunc("/blocked/{username}", tracingHandler.Blocked).Methods(http.MethodGet)

	return r
}
