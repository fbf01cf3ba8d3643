package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/service"
)

// Handler exposes the feature-execution workflow to the viewer shell.
type Handler struct {
	coordinator *service.Coordinator
}

// New creates a new Handler.
func New(coordinator *service.Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// OpenProject starts a session for the project and returns its feature history.
func (h *Handler) OpenProject(c *gin.Context) {
	projectID := c.Param("id")

	var body OpenProjectBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" || body.Owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "name and owner are required"})
		return
	}

	project := domain.Project{
		ID:         projectID,
		Name:       body.Name,
		Owner:      body.Owner,
		PreviewURL: body.PreviewURL,
		CreatedAt:  body.CreatedAt,
	}

	features, err := h.coordinator.OpenProject(c.Request.Context(), project)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "features": features, "previewUrl": project.Preview()})
}

// CloseSession ends the project session (the shell navigated away).
func (h *Handler) CloseSession(c *gin.Context) {
	h.coordinator.CloseProject(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListFeatures returns the current registry snapshot for the open project.
func (h *Handler) ListFeatures(c *gin.Context) {
	features, err := h.coordinator.Features(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project is not open"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "features": features})
}

// SubmitFeature accepts a click-plus-prompt submission and responds with
// the optimistically appended feature while the execute call runs on.
func (h *Handler) SubmitFeature(c *gin.Context) {
	var body SubmitFeatureBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	feature, err := h.coordinator.Submit(c.Request.Context(), c.Param("id"), body.Title, body.Prompt, body.Click)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		case errors.Is(err, domain.ErrSubmissionInFlight):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
		case errors.Is(err, domain.ErrSessionClosed):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project is not open"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"ok": true, "feature": feature})
}

// Status reports the submission slot state and the preview reload token.
func (h *Handler) Status(c *gin.Context) {
	status, err := h.coordinator.Status(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project is not open"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}
