package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newGuardedRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKey(key))
	r.GET("/secret", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func getWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIKey(t *testing.T) {
	t.Run("matching key passes", func(t *testing.T) {
		r := newGuardedRouter("s3cret")
		assert.Equal(t, http.StatusOK, getWithKey(r, "s3cret").Code)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		r := newGuardedRouter("s3cret")
		assert.Equal(t, http.StatusUnauthorized, getWithKey(r, "nope").Code)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		r := newGuardedRouter("s3cret")
		assert.Equal(t, http.StatusUnauthorized, getWithKey(r, "").Code)
	})

	t.Run("empty expected key disables the check", func(t *testing.T) {
		r := newGuardedRouter("")
		assert.Equal(t, http.StatusOK, getWithKey(r, "").Code)
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c.Request.Context()))
	})

	t.Run("generates and echoes an id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		rid := w.Header().Get("X-Request-Id")
		assert.NotEmpty(t, rid)
		assert.Equal(t, rid, w.Body.String())

		_, err := uuid.Parse(rid)
		assert.NoError(t, err, "generated ids are uuids")
	})

	t.Run("keeps a provided id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}
