// internal/app/features/providers/get.go
package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	providerstore "github.com/localfind/localfind/internal/app/store/providers"
	"github.com/localfind/localfind/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleGet handles GET /api/providers/{providerID}.
//
// A malformed ID cannot name any provider, so it gets the same 404 as
// an unknown one.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "providerID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "provider not found")
		return
	}

	p, err := h.Providers.GetByID(ctx, id)
	if errors.Is(err, providerstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "provider not found")
		return
	}
	if err != nil {
		h.Log.Error("provider lookup failed", zap.String("provider_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading provider: "+err.Error())
		return
	}

	expanded, err := h.View.ExpandOne(ctx, p)
	if err != nil {
		h.Log.Error("provider relation expansion failed", zap.String("provider_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading provider relations: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, expanded)
}
