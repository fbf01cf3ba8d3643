package http

import "github.com/gin-gonic/gin"

// Register attaches project directory routes to the given router group.
// The group is shared with the per-project workflow routes, which hang
// off the same :id parameter.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.DELETE("/:id", h.delete)
}
