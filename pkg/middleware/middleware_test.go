package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lockedin/lockedin-web/pkg/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func TestCORS(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS("https://lockedin.app"))
		r.POST("/signup", ok)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/signup", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://lockedin.app", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard never allows credentials", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS("*"))
		r.GET("/", ok)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", ok)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestSessions(t *testing.T) {
	store := services.NewSessionStore(time.Hour, nil, zap.NewNop())
	r := gin.New()
	r.Use(Sessions(store, time.Hour, false))
	echo := func(c *gin.Context) {
		s, found := SessionFrom(c)
		require.True(t, found)
		c.String(http.StatusOK, s.ID)
	}
	r.GET("/", echo)
	r.POST("/signup", echo)

	serve := func(method string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/", nil)
		if method == http.MethodPost {
			req = httptest.NewRequest(method, "/signup", nil)
		}
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("reads without a cookie store nothing", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			rec := serve(http.MethodGet, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Empty(t, rec.Result().Cookies())
		}
		assert.Zero(t, store.Len())
	})

	var cookie *http.Cookie
	t.Run("first post starts a session", func(t *testing.T) {
		rec := serve(http.MethodPost, nil)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie = cookies[0]
		assert.Equal(t, SessionCookieName, cookie.Name)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, 3600, cookie.MaxAge)
		assert.Equal(t, rec.Body.String(), cookie.Value)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("each visit re-issues the cookie", func(t *testing.T) {
		require.NotNil(t, cookie)
		rec := serve(http.MethodGet, cookie)
		assert.Equal(t, cookie.Value, rec.Body.String())

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, cookie.Value, cookies[0].Value)
		assert.Equal(t, 3600, cookies[0].MaxAge)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("stale cookie on a read is not stored", func(t *testing.T) {
		rec := serve(http.MethodGet, &http.Cookie{Name: SessionCookieName, Value: "stale"})
		assert.Empty(t, rec.Body.String())
		assert.Empty(t, rec.Result().Cookies())
		assert.Equal(t, 1, store.Len())
	})

	t.Run("stale cookie on a post starts a new session", func(t *testing.T) {
		rec := serve(http.MethodPost, &http.Cookie{Name: SessionCookieName, Value: "stale"})
		assert.NotEqual(t, "stale", rec.Body.String())
		assert.NotEmpty(t, rec.Body.String())
		assert.Equal(t, 2, store.Len())
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, zap.NewNop())
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", ok)
	r.POST("/signup", ok)

	post := func() int {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Zero(t, rl.Cleanup())
}

func TestLogger(t *testing.T) {
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	r.GET("/", ok)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
