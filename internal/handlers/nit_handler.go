package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artemis/internal/models"
	"artemis/internal/services"
)

type NITHandler struct {
	svc services.NITService
	log *zap.Logger
}

func NewNITHandler(svc services.NITService, log *zap.Logger) *NITHandler {
	return &NITHandler{svc: svc, log: log}
}

// Search godoc
// @Summary      Look up a company's NIT
// @Description  Scans a web search results page for the first "NIT: 900.123.456-7" style value
// @Tags         NIT
// @Accept       json
// @Produce      json
// @Param        body  body      models.NITSearchRequest  true  "Company name"
// @Success      200   {object}  models.NITResult
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]interface{}
// @Failure      502   {object}  map[string]string
// @Router       /nit/search [post]
func (h *NITHandler) Search(c *gin.Context) {
	var req models.NITSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	res, err := h.svc.Search(c.Request.Context(), req.CompanyName)
	if errors.Is(err, services.ErrNITNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "nit": nil})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
