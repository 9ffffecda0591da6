package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeNotFound, "gone")
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := Wrap(CodeForbidden, "denied", errors.New("boom"))
		outer := fmt.Errorf("context: %w", inner)
		assert.Equal(t, CodeForbidden, CodeOf(outer))
	})

	t.Run("unclassified error is internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	})
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", New(CodeValidation, "bad input"), http.StatusBadRequest},
		{"self follow", New(CodeSelfFollow, "no"), http.StatusBadRequest},
		{"unauthenticated", New(CodeUnauthenticated, "who"), http.StatusUnauthorized},
		{"invalid credentials", New(CodeInvalidCredentials, "nope"), http.StatusUnauthorized},
		{"forbidden", New(CodeForbidden, "private"), http.StatusForbidden},
		{"not found", New(CodeNotFound, "gone"), http.StatusNotFound},
		{"conflict", New(CodeConflict, "taken"), http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Respond(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRespondHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, errors.New("password hash mismatch at row 42"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "row 42")
}
