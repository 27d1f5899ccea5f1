package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	c, _ := newTestContext()
	assert.Empty(t, getRequestID(c))

	c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
	assert.Equal(t, "header-id", getRequestID(c))

	c.Set(middleware.RequestIDKey, "ctx-id")
	assert.Equal(t, "ctx-id", getRequestID(c))
}

func TestGetUserID(t *testing.T) {
	c, _ := newTestContext()
	_, err := getUserID(c)
	assert.Error(t, err)

	id := uuid.New()
	c.Set(middleware.JWTUserIDKey, id.String())
	got, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	c.Set(middleware.JWTUserIDKey, "not-a-uuid")
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext()
	h.Success(c, gin.H{"ticket_number": "42"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)

	c, w = newTestContext()
	h.Created(c, gin.H{"id": "x"})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext()
	h.SuccessWithMeta(c, []string{"a"}, 41, 2, 20)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 2, resp.Meta.Page)
}

func TestBaseHandlerErrorResponses(t *testing.T) {
	h := &BaseHandler{}
	tests := []struct {
		name   string
		call   func(*gin.Context)
		status int
		code   string
	}{
		{"bad request", func(c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"unauthorized", func(c *gin.Context) { h.Unauthorized(c, "who") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"internal", func(c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			c.Set(middleware.RequestIDKey, "req-9")
			tt.call(c)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-9", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerBindError(t *testing.T) {
	middleware.SetupValidator()
	h := &BaseHandler{}

	type body struct {
		Name string `json:"name" binding:"required"`
	}

	c, w := newTestContext()
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")
	var b body
	h.BindError(c, c.ShouldBindJSON(&b))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "name", resp.Error.Details[0].Field)

	c, w = newTestContext()
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.BindError(c, c.ShouldBindJSON(&b))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{shared.NewDomainError("LINE_NOT_FOUND", "line not found"), http.StatusNotFound, "ERR_LINE_NOT_FOUND"},
		{shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{shared.NewDomainError("UNPAID_BALANCE", "ticket has a balance"), http.StatusUnprocessableEntity, dto.ErrCodeUnpaidBalance},
		{fmt.Errorf("save: %w", shared.NewDomainError("INVALID_STATE", "paid")), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{errors.New("connection refused"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			c, w := newTestContext()
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
		})
	}

	c, w := newTestContext()
	h.HandleError(c, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())
}
