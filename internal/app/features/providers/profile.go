// internal/app/features/providers/profile.go
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	providerstore "github.com/localfind/localfind/internal/app/store/providers"
	"github.com/localfind/localfind/internal/app/system/auth"
	"github.com/localfind/localfind/internal/app/system/htmlsanitize"
	"github.com/localfind/localfind/internal/app/system/mailer"
	"github.com/localfind/localfind/internal/app/system/normalize"
	"github.com/localfind/localfind/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleGetProfile handles GET /api/providers/profile: the caller's own
// provider record, relations expanded. 404 when the caller has never
// created a profile.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, userID, ok := h.sessionUserID(w, r)
	if !ok {
		return
	}

	p, err := h.Providers.GetByUser(ctx, userID)
	if errors.Is(err, providerstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no provider profile for this account")
		return
	}
	if err != nil {
		h.Log.Error("profile lookup failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading profile: "+err.Error())
		return
	}

	expanded, err := h.View.ExpandOne(ctx, p)
	if err != nil {
		h.Log.Error("profile relation expansion failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading profile relations: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, expanded)
}

// profilePayload is the partial update body for PUT /profile. Absent
// fields stay nil and leave the stored values untouched.
type profilePayload struct {
	Service  *string `json:"service"`
	Location *string `json:"location"`
}

// HandleUpdateProfile handles PUT /api/providers/profile.
//
// First call for a user creates their provider record, seeded with the
// session display name; later calls update only the fields present in
// the body. Creation triggers a welcome email off the request path.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, userID, ok := h.sessionUserID(w, r)
	if !ok {
		return
	}

	var body profilePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	upd := providerstore.ProfileUpdate{}
	if body.Service != nil {
		s := htmlsanitize.Strip(*body.Service)
		upd.Service = &s
	}
	if body.Location != nil {
		l := htmlsanitize.Strip(*body.Location)
		upd.Location = &l
	}

	p, created, err := h.Providers.Upsert(ctx, userID, user.Name, upd)
	if err != nil {
		h.Log.Error("profile upsert failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "saving profile: "+err.Error())
		return
	}

	if created {
		h.Log.Info("provider profile created",
			zap.String("provider_id", p.ID.Hex()),
			zap.String("user_id", userID.Hex()))
		h.sendWelcome(user, p.Name)
	}

	writeJSON(w, http.StatusOK, p)
}

// sendWelcome fires the welcome email without blocking the request.
// Delivery failure is logged and otherwise ignored.
func (h *Handler) sendWelcome(user *auth.SessionUser, providerName string) {
	if h.Mail == nil || user.Email == "" {
		return
	}
	email := mailer.BuildWelcomeEmail(mailer.WelcomeEmailData{
		SiteName:     h.SiteName,
		ProviderName: providerName,
		ProfileURL:   h.BaseURL + "/api/providers/profile",
	})
	email.To = normalize.Email(user.Email)
	go func() {
		if err := h.Mail.Send(email); err != nil {
			h.Log.Warn("welcome email failed", zap.String("to", user.Email), zap.Error(err))
		}
	}()
}

// sessionUserID resolves the signed-in caller's user ObjectID. The
// middleware guarantees an identity is present; a non-hex ID means a
// stale or foreign session cookie, which reads as unauthenticated.
func (h *Handler) sessionUserID(w http.ResponseWriter, r *http.Request) (*auth.SessionUser, primitive.ObjectID, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		h.Log.Warn("session carries malformed user id", zap.String("user_id", user.ID))
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, primitive.NilObjectID, false
	}
	return user, userID, true
}
