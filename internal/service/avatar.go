package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/avatarly/avatarly-go/internal/apperror"
	"github.com/avatarly/avatarly-go/internal/model"
	"github.com/avatarly/avatarly-go/internal/prompt"
	"github.com/avatarly/avatarly-go/internal/repository"
	"github.com/avatarly/avatarly-go/internal/storage"
	"github.com/avatarly/avatarly-go/internal/synthesis"
)

// maxFetchBytes caps how much of a preview image is read when saving a
// generated avatar.
const maxFetchBytes = 10 << 20 // 10MB

// AvatarService orchestrates the avatar lifecycle: local upload,
// AI generation and save-confirmation.
type AvatarService struct {
	repo       UserRepository
	store      storage.ObjectStore
	generator  synthesis.ImageGenerator
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAvatarService creates a new AvatarService. httpClient is used to
// fetch preview images; pass nil for a default with a sane timeout.
func NewAvatarService(repo UserRepository, store storage.ObjectStore, generator synthesis.ImageGenerator, httpClient *http.Client, logger *slog.Logger) *AvatarService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &AvatarService{
		repo:       repo,
		store:      store,
		generator:  generator,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Upload stores an uploaded image and points the user's avatar at it.
func (s *AvatarService) Upload(ctx context.Context, userID int64, data []byte, filename, contentType string) (model.AvatarResponse, error) {
	if len(data) == 0 {
		return model.AvatarResponse{}, apperror.Validation("No file uploaded.")
	}

	key := objectName(userID, path.Ext(filename))
	return s.storeAndUpdate(ctx, userID, key, data, contentType, "Avatar uploaded and saved successfully.")
}

// Generate composes the full prompt and asks the synthesis provider for
// an image. The returned URL is a preview only; no storage or database
// side effect occurs here.
func (s *AvatarService) Generate(ctx context.Context, req model.GenerateAvatarRequest) (model.GenerateAvatarResponse, error) {
	if req.Prompt == "" {
		return model.GenerateAvatarResponse{}, apperror.Validation("Prompt is required.")
	}

	fullPrompt := prompt.Compose(req.Prompt, req.ArtStyle, req.ArtisticFilters)
	s.logger.Debug("composed synthesis prompt", "prompt", fullPrompt)

	imageURL, err := s.generator.Generate(ctx, fullPrompt)
	if err != nil {
		s.logger.Error("image generation failed", "error", err)
		return model.GenerateAvatarResponse{}, apperror.Upstream("Failed to generate AI avatar.")
	}

	return model.GenerateAvatarResponse{
		Message:  "Avatar generated successfully. Please confirm to save.",
		ImageURL: imageURL,
	}, nil
}

// SaveGenerated fetches a previously generated preview image and
// persists it as the user's avatar. The URL is the one the client got
// back from Generate; it is fetched as-is.
func (s *AvatarService) SaveGenerated(ctx context.Context, userID int64, imageURL string) (model.AvatarResponse, error) {
	if imageURL == "" {
		return model.AvatarResponse{}, apperror.Validation("Image URL is required to save.")
	}

	data, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		s.logger.Error("fetching generated image failed", "url", imageURL, "error", err)
		return model.AvatarResponse{}, apperror.Upstream("Failed to fetch generated image.")
	}

	key := objectName(userID, ".jpg")
	return s.storeAndUpdate(ctx, userID, key, data, "image/jpeg", "Avatar generated and saved successfully.")
}

// storeAndUpdate writes the object, resolves its public URL and updates
// the user row. If the row update fails the just-written object is
// deleted best-effort before the error is returned, so a failed request
// never leaves behind an object it created. Objects superseded by a
// successful update are left in place.
func (s *AvatarService) storeAndUpdate(ctx context.Context, userID int64, key string, data []byte, contentType, message string) (model.AvatarResponse, error) {
	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		s.logger.Error("storing avatar failed", "key", key, "error", err)
		return model.AvatarResponse{}, apperror.Upstream("Failed to upload avatar to storage.")
	}

	avatarURL := s.store.PublicURL(key)

	user, err := s.repo.UpdateAvatarURL(ctx, userID, avatarURL)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Error("compensating delete failed", "key", key, "error", delErr)
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AvatarResponse{}, apperror.NotFound("User not found")
		}
		s.logger.Error("updating avatar url failed", "user_id", userID, "error", err)
		return model.AvatarResponse{}, apperror.Upstream("Failed to update user avatar in the database.")
	}

	return model.AvatarResponse{
		Message:   message,
		AvatarURL: avatarURL,
		User:      user.Sanitize(),
	}, nil
}

func (s *AvatarService) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("fetched image is empty")
	}

	return data, nil
}

// objectName derives a globally unique object key for a user's avatar.
// The random suffix makes concurrent writes for the same user
// non-colliding.
func objectName(userID int64, ext string) string {
	return fmt.Sprintf("avatar-%d-%s%s", userID, uuid.New(), ext)
}
