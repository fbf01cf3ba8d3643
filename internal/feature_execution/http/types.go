package http

import (
	"time"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
)

// OpenProjectBody carries the active project from the shell when a
// project view is opened. The id comes from the URL.
type OpenProjectBody struct {
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// SubmitFeatureBody is a click-plus-prompt submission from the shell.
type SubmitFeatureBody struct {
	Title  string               `json:"title"`
	Prompt string               `json:"prompt"`
	Click  domain.ClickPosition `json:"click"`
}
