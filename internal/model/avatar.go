package model

// GenerateAvatarRequest represents an AI avatar generation request.
// ArtStyle and ArtisticFilters are optional; unrecognized values are
// ignored during prompt composition.
type GenerateAvatarRequest struct {
	Prompt          string   `json:"prompt"`
	ArtStyle        string   `json:"artStyle"`
	ArtisticFilters []string `json:"artisticFilters"`
}

// GenerateAvatarResponse carries the preview URL returned by the
// synthesis provider. Nothing is persisted until the client confirms
// via the save-generated endpoint.
type GenerateAvatarResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
}

// SaveGeneratedRequest asks the server to persist a previously
// generated preview image as the user's avatar.
type SaveGeneratedRequest struct {
	ImageURL string `json:"imageUrl"`
}

// AvatarResponse is returned after an avatar has been stored and the
// user row updated.
type AvatarResponse struct {
	Message   string       `json:"message"`
	AvatarURL string       `json:"avatar_url"`
	User      UserResponse `json:"user"`
}
