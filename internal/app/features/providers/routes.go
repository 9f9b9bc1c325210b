// internal/app/features/providers/routes.go
package providers

import (
	"github.com/go-chi/chi/v5"
	"github.com/localfind/localfind/internal/app/system/auth"
)

// Routes mounts the provider directory API. /profile and /upload-photo
// require a signed-in caller; directory search and reads are public.
//
// The fixed /profile route is registered before /{providerID} so chi
// never treats "profile" as a provider ID.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/profile", h.HandleGetProfile)
		r.Put("/profile", h.HandleUpdateProfile)
		r.Post("/upload-photo", h.HandleUploadPhoto)
	})

	r.Get("/{providerID}", h.HandleGet)

	return r
}
