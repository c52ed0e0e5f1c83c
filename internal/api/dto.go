package api

import (
	"github.com/starford/devarchitect/internal/architectservice"
	"github.com/starford/devarchitect/internal/generation"
	"github.com/starford/devarchitect/internal/models"
	"github.com/starford/devarchitect/internal/prefs"
)

// GenerateRequest is the request body for POST /api/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt" example:"A blog platform" validate:"required"`
}

// GenerateResponse carries the new document and the resulting state.
type GenerateResponse struct {
	Document *models.ArchitectureDocument `json:"document" validate:"required"`
	State    generation.State             `json:"state" validate:"required"`
}

// HistoryListResponse wraps the history listing.
type HistoryListResponse struct {
	Entries []architectservice.EntrySummary `json:"entries" validate:"required"`
	Total   int                             `json:"total" example:"3" validate:"required"`
}

// ThemeBody is the request and response body of the theme preference.
type ThemeBody struct {
	Theme  prefs.Theme   `json:"theme" example:"midnight" validate:"required"`
	Themes []prefs.Theme `json:"themes,omitempty"`
}
