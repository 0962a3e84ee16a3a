package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"artemis/internal/middleware"
	"artemis/internal/services"
)

const msgInvalidBody = "invalid request body"

var clientErrors = []error{
	services.ErrEmailRequired,
	services.ErrFieldsRequired,
	services.ErrCodeRequired,
	services.ErrPasswordTooShort,
	services.ErrNoActiveCode,
	services.ErrCodeIncorrect,
	services.ErrCodeExpired,
	services.ErrInvalidEmail,
	services.ErrNameRequired,
	services.ErrUnknownSection,
	services.ErrNegativePoints,
	services.ErrCompanyNameRequired,
}

var notFoundErrors = []error{
	services.ErrAccountNotFound,
	services.ErrFormNotFound,
	services.ErrNITNotFound,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps service errors to the flat {"error": ...} envelope.
// Client errors carry their own message; dependency failures get a generic one.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case isAny(err, clientErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUpstream):
		log.Warn("[http] upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "search service unavailable"})
	default:
		msg := "internal server error"
		switch {
		case errors.Is(err, services.ErrDelivery):
			msg = "failed to send email"
		case errors.Is(err, services.ErrIdentity):
			msg = "failed to update password"
		}
		log.Error("[http] request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func userIDFromCtx(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
