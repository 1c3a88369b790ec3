package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarly/avatarly-go/internal/apperror"
	"github.com/avatarly/avatarly-go/internal/model"
)

// fakeObjectStore records puts and deletes.
type fakeObjectStore struct {
	objects map[string][]byte
	types   map[string]string
	deleted []string
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://cdn.example.com/avatars/" + key
}

// fakeGenerator captures the prompt it was given.
type fakeGenerator struct {
	url     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func registeredUser(t *testing.T, repo *fakeUserRepo) int64 {
	t.Helper()
	u := &model.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Nickname:     "ada",
		PasswordHash: "x",
		Birthday:     time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC),
		Age:          34,
		Gender:       "female",
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u.ID
}

func TestUpload_Success(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeObjectStore()
	svc := NewAvatarService(repo, store, &fakeGenerator{}, nil, discardLogger())
	userID := registeredUser(t, repo)

	resp, err := svc.Upload(context.Background(), userID, []byte("png-bytes"), "selfie.png", "image/png")
	require.NoError(t, err)

	require.Len(t, store.objects, 1)
	for key, data := range store.objects {
		assert.True(t, strings.HasPrefix(key, "avatar-1-"))
		assert.True(t, strings.HasSuffix(key, ".png"))
		assert.Equal(t, []byte("png-bytes"), data)
		assert.Equal(t, "image/png", store.types[key])
		assert.Equal(t, "https://cdn.example.com/avatars/"+key, resp.AvatarURL)
	}

	require.NotNil(t, resp.User.AvatarURL)
	assert.Equal(t, resp.AvatarURL, *resp.User.AvatarURL)
	assert.Empty(t, store.deleted)
}

func TestUpload_EmptyFile(t *testing.T) {
	svc := NewAvatarService(newFakeUserRepo(), newFakeObjectStore(), &fakeGenerator{}, nil, discardLogger())

	_, err := svc.Upload(context.Background(), 1, nil, "selfie.png", "image/png")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpload_StoreFailure(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeObjectStore()
	store.putErr = errors.New("bucket unavailable")
	svc := NewAvatarService(repo, store, &fakeGenerator{}, nil, discardLogger())
	userID := registeredUser(t, repo)

	_, err := svc.Upload(context.Background(), userID, []byte("data"), "selfie.png", "image/png")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}

// A failed row update must remove the object written earlier in the
// same request.
func TestUpload_CompensationOnDBFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.updateErr = errors.New("connection reset")
	store := newFakeObjectStore()
	svc := NewAvatarService(repo, store, &fakeGenerator{}, nil, discardLogger())
	userID := registeredUser(t, repo)

	_, err := svc.Upload(context.Background(), userID, []byte("data"), "selfie.png", "image/png")
	assert.ErrorIs(t, err, apperror.ErrUpstream)

	assert.Empty(t, store.objects, "object from the failed attempt must not persist")
	assert.Len(t, store.deleted, 1)
}

func TestGenerate_RequiresPrompt(t *testing.T) {
	svc := NewAvatarService(newFakeUserRepo(), newFakeObjectStore(), &fakeGenerator{}, nil, discardLogger())

	_, err := svc.Generate(context.Background(), model.GenerateAvatarRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGenerate_ComposesPromptAndReturnsPreview(t *testing.T) {
	gen := &fakeGenerator{url: "https://provider.example.com/img/123.png"}
	store := newFakeObjectStore()
	repo := newFakeUserRepo()
	svc := NewAvatarService(repo, store, gen, nil, discardLogger())

	resp, err := svc.Generate(context.Background(), model.GenerateAvatarRequest{
		Prompt:          "a red fox",
		ArtStyle:        "anime",
		ArtisticFilters: []string{"vibrant"},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://provider.example.com/img/123.png", resp.ImageURL)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "a red fox")
	assert.Contains(t, gen.prompts[0], "anime style")
	assert.Contains(t, gen.prompts[0], "saturated colors")

	// Preview only: no storage or database side effects.
	assert.Empty(t, store.objects)
}

func TestGenerate_ProviderFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := NewAvatarService(newFakeUserRepo(), newFakeObjectStore(), gen, nil, discardLogger())

	_, err := svc.Generate(context.Background(), model.GenerateAvatarRequest{Prompt: "a red fox"})
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}

func TestSaveGenerated_RequiresURL(t *testing.T) {
	svc := NewAvatarService(newFakeUserRepo(), newFakeObjectStore(), &fakeGenerator{}, nil, discardLogger())

	_, err := svc.SaveGenerated(context.Background(), 1, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSaveGenerated_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	repo := newFakeUserRepo()
	store := newFakeObjectStore()
	svc := NewAvatarService(repo, store, &fakeGenerator{}, srv.Client(), discardLogger())
	userID := registeredUser(t, repo)

	resp, err := svc.SaveGenerated(context.Background(), userID, srv.URL+"/preview.png")
	require.NoError(t, err)

	require.Len(t, store.objects, 1)
	for key, data := range store.objects {
		assert.True(t, strings.HasPrefix(key, "avatar-1-"))
		assert.True(t, strings.HasSuffix(key, ".jpg"))
		assert.Equal(t, []byte("jpeg-bytes"), data)
		assert.Equal(t, "image/jpeg", store.types[key])
	}

	user, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, user.AvatarURL.Valid)
	assert.Equal(t, resp.AvatarURL, user.AvatarURL.String)
}

// A non-OK fetch must fail upstream without writing an object or
// touching the user row.
func TestSaveGenerated_FetchNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	repo := newFakeUserRepo()
	store := newFakeObjectStore()
	svc := NewAvatarService(repo, store, &fakeGenerator{}, srv.Client(), discardLogger())
	userID := registeredUser(t, repo)

	_, err := svc.SaveGenerated(context.Background(), userID, srv.URL+"/expired.png")
	assert.ErrorIs(t, err, apperror.ErrUpstream)

	assert.Empty(t, store.objects)
	user, getErr := repo.GetByID(context.Background(), userID)
	require.NoError(t, getErr)
	assert.False(t, user.AvatarURL.Valid, "user row must not be mutated")
}

func TestSaveGenerated_CompensationOnDBFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	repo := newFakeUserRepo()
	repo.updateErr = errors.New("connection reset")
	store := newFakeObjectStore()
	svc := NewAvatarService(repo, store, &fakeGenerator{}, srv.Client(), discardLogger())
	userID := registeredUser(t, repo)

	_, err := svc.SaveGenerated(context.Background(), userID, srv.URL+"/preview.png")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.Empty(t, store.objects)
	assert.Len(t, store.deleted, 1)
}

func TestUpload_UserNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeObjectStore()
	svc := NewAvatarService(repo, store, &fakeGenerator{}, nil, discardLogger())

	_, err := svc.Upload(context.Background(), 404, []byte("data"), "selfie.png", "image/png")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	// The object written before the lookup failure is compensated too.
	assert.Empty(t, store.objects)
}
