package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/themestore/demoaccess/internal/service"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"no challenge", service.ErrNoChallenge, http.StatusBadRequest},
		{"invalid code", &service.ErrInvalidCode{Remaining: 2}, http.StatusUnauthorized},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"blocked", service.ErrBlocked, http.StatusForbidden},
		{"not verified", service.ErrNotVerified, http.StatusForbidden},
		{"exhausted", service.ErrExhausted, http.StatusForbidden},
		{"expired", service.ErrExpired, http.StatusGone},
		{"already verified", service.ErrAlreadyVerified, http.StatusConflict},
		{"rate limited", service.ErrTooManyRequests, http.StatusTooManyRequests},
		{"delivery", service.ErrDelivery, http.StatusBadGateway},
		{"storage", service.ErrStorage, http.StatusServiceUnavailable},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestWriteErrorDoesNotLeakInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, errors.New("pq: password authentication failed"))
	assert.NotContains(t, w.Body.String(), "password authentication")
	assert.Contains(t, w.Body.String(), "Internal server error")
}
