package http

import "github.com/shnkreddy98/airfold-backend/internal/projects/service"

// Handler bundles the dependencies for project directory endpoints.
type Handler struct {
	directory *service.Directory
}

func New(directory *service.Directory) *Handler {
	return &Handler{directory: directory}
}

// CreateProjectBody is the payload for registering a new project.
type CreateProjectBody struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}
