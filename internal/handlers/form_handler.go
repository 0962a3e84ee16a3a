package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artemis/internal/models"
	"artemis/internal/services"
)

type FormHandler struct {
	forms services.FormService
	log   *zap.Logger
}

func NewFormHandler(forms services.FormService, log *zap.Logger) *FormHandler {
	return &FormHandler{forms: forms, log: log}
}

// GetMine godoc
// @Summary      Current user's form draft
// @Description  Returns an empty draft when nothing was saved yet
// @Tags         Forms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.FormContent
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /forms/me [get]
func (h *FormHandler) GetMine(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	content, err := h.forms.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// SaveMine godoc
// @Summary      Save (upsert) the current user's form draft
// @Tags         Forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.FormContent  true  "Draft"
// @Success      200   {object}  models.FormData
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /forms/me [put]
func (h *FormHandler) SaveMine(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var content models.FormContent
	if err := c.ShouldBindJSON(&content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	saved, err := h.forms.Save(c.Request.Context(), userID, content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ExportPDF godoc
// @Summary      Download the current user's form as PDF
// @Tags         Forms
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}    file
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /forms/me/pdf [get]
func (h *FormHandler) ExportPDF(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	path, err := h.forms.ExportPDF(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			h.log.Warn("[forms][pdf] remove export failed", zap.String("path", path), zap.Error(err))
		}
	}()
	c.FileAttachment(path, services.FormPDFName(userID))
}
