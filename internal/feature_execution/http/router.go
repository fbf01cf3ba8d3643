package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts the workflow routes on a projects route group.
func (h *Handler) Register(projects *gin.RouterGroup) {
	projects.POST("/:id/open", h.OpenProject)
	projects.DELETE("/:id/session", h.CloseSession)
	projects.GET("/:id/features", h.ListFeatures)
	projects.POST("/:id/features", h.SubmitFeature)
	projects.GET("/:id/status", h.Status)
}
