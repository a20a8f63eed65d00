package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	// Should not panic
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	type testRequest struct {
		Email  string `json:"email" binding:"required,email"`
		Rating int    `json:"rating" binding:"required,min=1,max=5"`
	}

	SetupValidator()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req testRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("reports each failed field by its JSON name", func(t *testing.T) {
		body := strings.NewReader(`{"email": "invalid", "rating": 9}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)

		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "rating")
	})

	t.Run("malformed JSON still yields a structured error", func(t *testing.T) {
		body := strings.NewReader(`{"email": `)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("passes valid input through", func(t *testing.T) {
		body := strings.NewReader(`{"email": "alice@example.com", "rating": 4}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type testStruct struct {
		Required string `validate:"required"`
		Email    string `validate:"omitempty,email"`
		Min      string `validate:"omitempty,min=5"`
		Rating   int    `validate:"omitempty,min=1,max=5"`
		OneOf    string `validate:"omitempty,oneof=pending completed cancelled"`
	}

	v := validator.New()

	t.Run("required", func(t *testing.T) {
		err := v.Struct(testStruct{})
		require.Error(t, err)
		validationErrors := err.(validator.ValidationErrors)
		assert.Equal(t, "This field is required", getValidationMessage(validationErrors[0]))
	})

	t.Run("email", func(t *testing.T) {
		err := v.Struct(testStruct{Required: "x", Email: "not-an-email"})
		require.Error(t, err)
		validationErrors := err.(validator.ValidationErrors)
		assert.Equal(t, "Invalid email format", getValidationMessage(validationErrors[0]))
	})

	t.Run("min on strings mentions characters", func(t *testing.T) {
		err := v.Struct(testStruct{Required: "x", Min: "abc"})
		require.Error(t, err)
		validationErrors := err.(validator.ValidationErrors)
		assert.Equal(t, "Must be at least 5 characters", getValidationMessage(validationErrors[0]))
	})

	t.Run("max on numbers omits characters", func(t *testing.T) {
		err := v.Struct(testStruct{Required: "x", Rating: 9})
		require.Error(t, err)
		validationErrors := err.(validator.ValidationErrors)
		assert.Equal(t, "Must be at most 5", getValidationMessage(validationErrors[0]))
	})

	t.Run("oneof lists the choices", func(t *testing.T) {
		err := v.Struct(testStruct{Required: "x", OneOf: "refunded"})
		require.Error(t, err)
		validationErrors := err.(validator.ValidationErrors)
		assert.Equal(t, "Must be one of: pending completed cancelled", getValidationMessage(validationErrors[0]))
	})
}
