// internal/app/features/providers/photo.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	providerstore "github.com/localfind/localfind/internal/app/store/providers"
	"github.com/localfind/localfind/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// maxPhotoBytes caps the whole multipart request body. A larger upload
// is rejected outright; it must never be truncated into a corrupt
// stored photo.
const maxPhotoBytes = 10 << 20

// HandleUploadPhoto handles POST /api/providers/upload-photo, multipart
// field "photo".
//
// The payload is written to blob storage first and the resulting public
// URL persisted on the caller's provider record second, so a storage
// failure leaves the record untouched. An orphaned blob from a failed
// persist is harmless and cheap.
func (h *Handler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
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

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("photo too large (limit %d bytes)", maxPhotoBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing photo file")
		return
	}
	defer file.Close()

	url, err := h.storePhoto(ctx, p.ID.Hex(), file, header)
	if err != nil {
		h.Log.Error("photo upload failed",
			zap.String("provider_id", p.ID.Hex()),
			zap.String("filename", header.Filename),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storing photo: "+err.Error())
		return
	}

	if err := h.Providers.SetPhotoURL(ctx, p.ID, url); err != nil {
		h.Log.Error("photo url persist failed", zap.String("provider_id", p.ID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "saving photo: "+err.Error())
		return
	}

	h.Log.Info("provider photo updated", zap.String("provider_id", p.ID.Hex()))
	writeJSON(w, http.StatusOK, map[string]string{"photo": url})
}

// storePhoto writes the photo to blob storage under a collision-free
// key and returns its public URL.
//
// Key shape: provider_photos/<providerID>_<unix-millis>_<uuid8>_<filename>.
// The timestamp keeps keys sortable by upload time; the uuid fragment
// keeps two uploads in the same millisecond apart.
func (h *Handler) storePhoto(ctx context.Context, providerID string, file multipart.File, header *multipart.FileHeader) (string, error) {
	key := fmt.Sprintf("provider_photos/%s_%d_%s_%s",
		providerID,
		time.Now().UTC().UnixMilli(),
		uuid.New().String()[:8],
		sanitizeFilename(header.Filename),
	)

	opts := &storage.PutOptions{
		ContentType: header.Header.Get("Content-Type"),
	}
	if err := h.Blobs.Put(ctx, key, file, opts); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return h.Blobs.URL(key), nil
}

// sanitizeFilename reduces a client-supplied filename to a safe object
// key segment.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "photo"
	}
	if len(result) > 100 {
		// Truncate but keep the extension if there is one.
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
