package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/bluetrace-go/internal/api/response"
	"github.com/mcoot/bluetrace-go/internal/services/block"
	"github.com/mcoot/bluetrace-go/internal/services/reconcile"
)

// TracingHandler serves the operational view of the tracing server
type TracingHandler struct {
	reconciler *reconcile.Service
	blocks     *block.Registry
}

// NewTracingHandler creates a new TracingHandler
func NewTracingHandler(reconciler *reconcile.Service, blocks *block.Registry) *TracingHandler {
	return &TracingHandler{
		reconciler: reconciler,
		blocks:     blocks,
	}
}

// Health reports server liveness
func (h *TracingHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

// Contacts returns every contact reconciled so far, in arrival order
func (h *TracingHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	contacts := h.reconciler.Contacts()
	out := make([]response.ReconciledContact, len(contacts))
	for i, c := range contacts {
		out[i] = response.ReconciledContactFromModel(c)
	}
	response.JSON(w, http.StatusOK, out)
}

// Blocked reports whether a username is currently locked out
func (h *TracingHandler) Blocked(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	response.JSON(w, http.StatusOK, response.BlockedStatus{
		Username: username,
		Blocked:  h.blocks.IsBlocked(username),
	})
}
