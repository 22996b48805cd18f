package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wconnect-service/internal/models"
	"wconnect-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, err error) (*httptest.ResponseRecorder, models.ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	Error(c, err)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: content is required", services.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: conversation 9", services.ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: not a participant", services.ErrForbidden), http.StatusForbidden},
		{"unavailable", services.ErrUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := perform(t, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus, body.Code)
		})
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	_, body := perform(t, errors.New("dial tcp 10.0.0.8:5432: connect: connection refused"))
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, body.Message, "10.0.0.8")
}
