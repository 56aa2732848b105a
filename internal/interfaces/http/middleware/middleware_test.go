package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agency/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		check  func(t *testing.T, id string)
	}{
		{"generated", "", func(t *testing.T, id string) { assert.Len(t, id, 32) }},
		{"reused", "abc-123", func(t *testing.T, id string) { assert.Equal(t, "abc-123", id) }},
		{"truncated", strings.Repeat("x", 200), func(t *testing.T, id string) { assert.Len(t, id, MaxRequestIDLength) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestID())
			var seen string
			r.GET("/", func(c *gin.Context) { seen = GetRequestID(c) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			tt.check(t, seen)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.HTTPConfig{CORSAllowOrigins: []string{"https://console.agency.test"}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://console.agency.test")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://console.agency.test", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://evil.test")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingDisabled(t *testing.T) {
	assert.Nil(t, Tracing("agency", false))
	assert.Len(t, Tracing("agency", true), 2)
}

func TestCurrencyValidation(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))

	type payload struct {
		Currency string `validate:"currency"`
	}
	assert.NoError(t, v.Struct(payload{Currency: "EUR"}))
	assert.Error(t, v.Struct(payload{Currency: "eur"}))
	assert.Error(t, v.Struct(payload{Currency: "EURO"}))
}

func TestValidationUsesJSONNames(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))

	type payload struct {
		Currency string `json:"currency,omitempty" validate:"currency"`
	}
	err := v.Struct(payload{Currency: "x"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "payload.currency", verrs[0].Namespace())
}
