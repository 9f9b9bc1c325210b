package providers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/localfind/localfind/internal/app/features/providers"
	providerstore "github.com/localfind/localfind/internal/app/store/providers"
	"github.com/localfind/localfind/internal/app/store/queries/providerview"
	"github.com/localfind/localfind/internal/app/system/auth"
	"github.com/localfind/localfind/internal/app/system/mailer"
	"github.com/localfind/localfind/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeProviderStore struct {
	byID   map[primitive.ObjectID]*models.Provider
	byUser map[primitive.ObjectID]*models.Provider

	searchResult []models.Provider
	searchErr    error

	upsertResult  *models.Provider
	upsertCreated bool
	upsertErr     error
	upsertGotName string
	upsertGotUpd  providerstore.ProfileUpdate

	photoErr    error
	photoSetID  primitive.ObjectID
	photoSetURL string
}

func (f *fakeProviderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Provider, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, providerstore.ErrNotFound
}

func (f *fakeProviderStore) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Provider, error) {
	if p, ok := f.byUser[userID]; ok {
		return p, nil
	}
	return nil, providerstore.ErrNotFound
}

func (f *fakeProviderStore) Search(ctx context.Context, filter bson.M) ([]models.Provider, error) {
	return f.searchResult, f.searchErr
}

func (f *fakeProviderStore) Upsert(ctx context.Context, userID primitive.ObjectID, displayName string, upd providerstore.ProfileUpdate) (*models.Provider, bool, error) {
	f.upsertGotName = displayName
	f.upsertGotUpd = upd
	return f.upsertResult, f.upsertCreated, f.upsertErr
}

func (f *fakeProviderStore) SetPhotoURL(ctx context.Context, id primitive.ObjectID, photoURL string) error {
	if f.photoErr != nil {
		return f.photoErr
	}
	f.photoSetID = id
	f.photoSetURL = photoURL
	return nil
}

type emptyServices struct{}

func (emptyServices) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error) {
	return nil, nil
}

type emptyReviews struct{}

func (emptyReviews) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error) {
	return nil, nil
}

type fakeBlobStore struct {
	putErr  error
	putKey  string
	putData []byte
	putOpts *storage.PutOptions
}

func (f *fakeBlobStore) Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.putKey = path
	f.putData = data
	f.putOpts = opts
	return nil
}

func (f *fakeBlobStore) URL(path string) string {
	return "https://cdn.example.com/" + path
}

type fakeSender struct {
	sent chan mailer.Email
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(chan mailer.Email, 1)}
}

func (f *fakeSender) Send(e mailer.Email) error {
	f.sent <- e
	return nil
}

func newTestHandler(store *fakeProviderStore, blobs providers.BlobStore, mail mailer.Sender) *providers.Handler {
	return providers.NewHandler(
		store,
		providerview.NewExpander(emptyServices{}, emptyReviews{}),
		blobs,
		mail,
		"Local Service Finder",
		"https://example.com",
		zap.NewNop(),
	)
}

func signedIn(r *http.Request, userID primitive.ObjectID) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    userID.Hex(),
		Name:  "Jo Smith",
		Email: "jo@example.com",
	})
}

func TestList_ReturnsExpandedProviders(t *testing.T) {
	store := &fakeProviderStore{
		searchResult: []models.Provider{
			{ID: primitive.NewObjectID(), Name: "Jo's Plumbing", Service: "Plumbing"},
		},
	}
	h := newTestHandler(store, &fakeBlobStore{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?query=plumb", nil)
	providers.Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got []struct {
		Name     string            `json:"name"`
		Services []json.RawMessage `json:"services"`
		Reviews  []json.RawMessage `json:"reviews"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Jo's Plumbing" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if got[0].Services == nil || got[0].Reviews == nil {
		t.Error("expanded relations must be arrays, not null")
	}
}

func TestList_StoreFailureIs500(t *testing.T) {
	store := &fakeProviderStore{searchErr: errors.New("connection reset")}
	h := newTestHandler(store, &fakeBlobStore{}, nil)

	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "message") {
		t.Errorf("error body missing message field: %s", rec.Body.String())
	}
}

func TestGet_UnknownAndMalformedIDsAre404(t *testing.T) {
	h := newTestHandler(&fakeProviderStore{}, &fakeBlobStore{}, nil)
	router := providers.Routes(h)

	for _, path := range []string{"/" + primitive.NewObjectID().Hex(), "/not-a-hex-id"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d, want 404", path, rec.Code)
		}
	}
}

func TestGet_ReturnsProvider(t *testing.T) {
	id := primitive.NewObjectID()
	store := &fakeProviderStore{
		byID: map[primitive.ObjectID]*models.Provider{
			id: {ID: id, Name: "Jo's Plumbing"},
		},
	}
	h := newTestHandler(store, &fakeBlobStore{}, nil)

	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+id.Hex(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Jo's Plumbing") {
		t.Errorf("body missing provider: %s", rec.Body.String())
	}
}

func TestProfileRoutes_RequireAuth(t *testing.T) {
	h := newTestHandler(&fakeProviderStore{}, &fakeBlobStore{}, nil)
	router := providers.Routes(h)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/profile"},
		{http.MethodPut, "/profile"},
		{http.MethodPost, "/upload-photo"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(c.method, c.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", c.method, c.path, rec.Code)
		}
	}
}

func TestGetProfile_NotShadowedByIDRoute(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeProviderStore{
		byUser: map[primitive.ObjectID]*models.Provider{
			userID: {ID: primitive.NewObjectID(), UserID: userID, Name: "Jo Smith"},
		},
	}
	h := newTestHandler(store, &fakeBlobStore{}, nil)

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodGet, "/profile", nil), userID)
	providers.Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestGetProfile_MissingIs404(t *testing.T) {
	h := newTestHandler(&fakeProviderStore{}, &fakeBlobStore{}, nil)

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodGet, "/profile", nil), primitive.NewObjectID())
	providers.Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpdateProfile_CreateSendsWelcomeEmail(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeProviderStore{
		upsertResult:  &models.Provider{ID: primitive.NewObjectID(), UserID: userID, Name: "Jo Smith"},
		upsertCreated: true,
	}
	sender := newFakeSender()
	h := newTestHandler(store, &fakeBlobStore{}, sender)

	body := strings.NewReader(`{"service": "Plumbing", "location": "Austin"}`)
	req := signedIn(httptest.NewRequest(http.MethodPut, "/profile", body), userID)
	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.upsertGotName != "Jo Smith" {
		t.Errorf("display name = %q", store.upsertGotName)
	}
	if store.upsertGotUpd.Service == nil || *store.upsertGotUpd.Service != "Plumbing" {
		t.Errorf("service not passed through: %+v", store.upsertGotUpd)
	}

	select {
	case e := <-sender.sent:
		if e.To != "jo@example.com" {
			t.Errorf("welcome email to %q", e.To)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email never sent")
	}
}

func TestUpdateProfile_UpdateSendsNoEmail(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeProviderStore{
		upsertResult:  &models.Provider{ID: primitive.NewObjectID(), UserID: userID, Name: "Jo Smith"},
		upsertCreated: false,
	}
	sender := newFakeSender()
	h := newTestHandler(store, &fakeBlobStore{}, sender)

	body := strings.NewReader(`{"location": "Dallas"}`)
	req := signedIn(httptest.NewRequest(http.MethodPut, "/profile", body), userID)
	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.upsertGotUpd.Service != nil {
		t.Errorf("absent service must stay nil, got %q", *store.upsertGotUpd.Service)
	}
	if store.upsertGotUpd.Location == nil || *store.upsertGotUpd.Location != "Dallas" {
		t.Errorf("location not passed through: %+v", store.upsertGotUpd)
	}

	select {
	case <-sender.sent:
		t.Fatal("no email expected on update")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpdateProfile_StripsMarkup(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeProviderStore{
		upsertResult: &models.Provider{ID: primitive.NewObjectID(), UserID: userID},
	}
	h := newTestHandler(store, &fakeBlobStore{}, nil)

	body := strings.NewReader(`{"service": "<b>Plumbing</b><script>x()</script>"}`)
	req := signedIn(httptest.NewRequest(http.MethodPut, "/profile", body), userID)
	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.upsertGotUpd.Service == nil || *store.upsertGotUpd.Service != "Plumbing" {
		t.Errorf("markup survived sanitization: %+v", store.upsertGotUpd.Service)
	}
}

func TestUpdateProfile_BadJSONIs400(t *testing.T) {
	h := newTestHandler(&fakeProviderStore{}, &fakeBlobStore{}, nil)

	body := strings.NewReader(`{"service":`)
	req := signedIn(httptest.NewRequest(http.MethodPut, "/profile", body), primitive.NewObjectID())
	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func photoRequest(t *testing.T, userID primitive.ObjectID, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload-photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return signedIn(req, userID)
}

func TestUploadPhoto_StoresBlobAndPersistsURL(t *testing.T) {
	userID := primitive.NewObjectID()
	providerID := primitive.NewObjectID()
	store := &fakeProviderStore{
		byUser: map[primitive.ObjectID]*models.Provider{
			userID: {ID: providerID, UserID: userID},
		},
	}
	blobs := &fakeBlobStore{}
	h := newTestHandler(store, blobs, nil)

	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, photoRequest(t, userID, "photo", "head shot!.jpg", []byte("jpeg-bytes")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	wantPrefix := "provider_photos/" + providerID.Hex() + "_"
	if !strings.HasPrefix(blobs.putKey, wantPrefix) {
		t.Errorf("key = %q, want prefix %q", blobs.putKey, wantPrefix)
	}
	if !strings.HasSuffix(blobs.putKey, "_head_shot_.jpg") {
		t.Errorf("filename not sanitized into key: %q", blobs.putKey)
	}
	if string(blobs.putData) != "jpeg-bytes" {
		t.Errorf("stored payload = %q", blobs.putData)
	}

	if store.photoSetID != providerID {
		t.Errorf("photo persisted on %s, want %s", store.photoSetID.Hex(), providerID.Hex())
	}
	if store.photoSetURL != "https://cdn.example.com/"+blobs.putKey {
		t.Errorf("persisted url = %q", store.photoSetURL)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["photo"] != store.photoSetURL {
		t.Errorf("response photo = %q, want %q", resp["photo"], store.photoSetURL)
	}
}

func TestUploadPhoto_NoProfileIs404AndNoWrite(t *testing.T) {
	blobs := &fakeBlobStore{}
	h := newTestHandler(&fakeProviderStore{}, blobs, nil)

	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, photoRequest(t, primitive.NewObjectID(), "photo", "a.jpg", []byte("x")))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if blobs.putKey != "" {
		t.Errorf("blob written despite missing profile: %q", blobs.putKey)
	}
}

func TestUploadPhoto_StorageFailureLeavesRecordUntouched(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeProviderStore{
		byUser: map[primitive.ObjectID]*models.Provider{
			userID: {ID: primitive.NewObjectID(), UserID: userID},
		},
	}
	blobs := &fakeBlobStore{putErr: errors.New("bucket unavailable")}
	h := newTestHandler(store, blobs, nil)

	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, photoRequest(t, userID, "photo", "a.jpg", []byte("x")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.photoSetURL != "" {
		t.Errorf("photo url persisted despite storage failure: %q", store.photoSetURL)
	}
}

func TestUploadPhoto_OversizedIsRejectedNotTruncated(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeProviderStore{
		byUser: map[primitive.ObjectID]*models.Provider{
			userID: {ID: primitive.NewObjectID(), UserID: userID},
		},
	}
	blobs := &fakeBlobStore{}
	h := newTestHandler(store, blobs, nil)

	// Payload content plus multipart framing exceeds the body cap.
	oversized := bytes.Repeat([]byte("a"), 10<<20+1024)
	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, photoRequest(t, userID, "photo", "big.jpg", oversized))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if blobs.putKey != "" {
		t.Errorf("blob written for oversized upload: %q (%d bytes)", blobs.putKey, len(blobs.putData))
	}
	if store.photoSetURL != "" {
		t.Errorf("photo url persisted for oversized upload: %q", store.photoSetURL)
	}
}

func TestUploadPhoto_MissingFieldIs400(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeProviderStore{
		byUser: map[primitive.ObjectID]*models.Provider{
			userID: {ID: primitive.NewObjectID(), UserID: userID},
		},
	}
	h := newTestHandler(store, &fakeBlobStore{}, nil)

	rec := httptest.NewRecorder()
	providers.Routes(h).ServeHTTP(rec, photoRequest(t, userID, "attachment", "a.jpg", []byte("x")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
