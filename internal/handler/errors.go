package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/internal/service"
)

// writeError maps service-layer errors onto HTTP status codes. Anything the
// service layer did not classify is a 500 with a generic body.
func writeError(c *gin.Context, err error) {
	var invalid *service.ErrInvalidCode

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNoChallenge):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrBlocked),
		errors.Is(err, service.ErrNotVerified),
		errors.Is(err, service.ErrExhausted):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrExpired):
		c.JSON(http.StatusGone, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrAlreadyVerified):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrTooManyRequests):
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrDelivery):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrStorage):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
	}
}
