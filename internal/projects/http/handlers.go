package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
)

func (h *Handler) create(c *gin.Context) {
	var req CreateProjectBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	project, err := h.directory.Create(c.Request.Context(), req.Owner, req.Name)
	if err != nil {
		if domain.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": project})
}

func (h *Handler) list(c *gin.Context) {
	owner := strings.TrimSpace(c.Query("owner"))
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "owner is required"})
		return
	}

	items, err := h.directory.List(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) delete(c *gin.Context) {
	owner := strings.TrimSpace(c.Query("owner"))
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "owner is required"})
		return
	}

	if err := h.directory.Delete(c.Request.Context(), owner, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
