// internal/app/features/providers/list.go
package providers

import (
	"context"
	"net/http"

	providerstore "github.com/localfind/localfind/internal/app/store/providers"
	"github.com/localfind/localfind/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleList handles GET /api/providers.
//
// Optional query parameters `query` (matches name or service) and
// `location` narrow the result; with neither the whole directory is
// returned. Matches come back with services and reviews expanded.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := providerstore.SearchFilter(
		r.URL.Query().Get("query"),
		r.URL.Query().Get("location"),
	)

	matches, err := h.Providers.Search(ctx, filter)
	if err != nil {
		h.Log.Error("provider search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "searching providers: "+err.Error())
		return
	}

	expanded, err := h.View.Expand(ctx, matches)
	if err != nil {
		h.Log.Error("provider relation expansion failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading provider relations: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, expanded)
}
