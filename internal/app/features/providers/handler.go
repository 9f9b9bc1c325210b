// Package providers is the provider directory surface: public search
// and profile reads, plus the signed-in owner's profile upsert and
// photo upload.
package providers

import (
	"context"
	"io"

	"github.com/dalemusser/waffle/pantry/storage"
	providerstore "github.com/localfind/localfind/internal/app/store/providers"
	"github.com/localfind/localfind/internal/app/store/queries/providerview"
	"github.com/localfind/localfind/internal/app/system/mailer"
	"github.com/localfind/localfind/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProviderStore is the slice of the provider store these handlers use.
// Satisfied by providerstore.Store; tests substitute fakes.
type ProviderStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Provider, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Provider, error)
	Search(ctx context.Context, filter bson.M) ([]models.Provider, error)
	Upsert(ctx context.Context, userID primitive.ObjectID, displayName string, upd providerstore.ProfileUpdate) (*models.Provider, bool, error)
	SetPhotoURL(ctx context.Context, id primitive.ObjectID, photoURL string) error
}

// BlobStore is the slice of the blob storage backend the photo upload
// uses. Satisfied by storage.Store (local or S3).
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	URL(path string) string
}

// Handler owns all provider directory handlers.
type Handler struct {
	Providers ProviderStore
	View      *providerview.Expander
	Blobs     BlobStore
	Mail      mailer.Sender
	SiteName  string
	BaseURL   string
	Log       *zap.Logger
}

// NewHandler constructs a Handler bound to the given stores and logger.
// Mail may be nil, in which case no welcome email is sent.
func NewHandler(store ProviderStore, view *providerview.Expander, blobs BlobStore, mail mailer.Sender, siteName, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Providers: store,
		View:      view,
		Blobs:     blobs,
		Mail:      mail,
		SiteName:  siteName,
		BaseURL:   baseURL,
		Log:       logger,
	}
}
