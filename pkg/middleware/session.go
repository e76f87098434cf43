package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lockedin/lockedin-web/pkg/services"
)

const (
	SessionCookieName = "lockedin_session"
	sessionKey        = "session"
)

// Sessions attaches the caller's session to the gin context. A live session
// gets its cookie re-issued so expiry follows the last visit. Without one,
// reads get a throwaway signup session and only form posts start a stored
// session and set the cookie.
func Sessions(store *services.SessionStore, maxAge time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := c.Cookie(SessionCookieName); err == nil && id != "" {
			if s, ok := store.Get(id); ok {
				setSessionCookie(c, s.ID, maxAge, secure)
				c.Set(sessionKey, s)
				c.Next()
				return
			}
		}

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Set(sessionKey, store.Transient())
			c.Next()
			return
		}

		s := store.Create()
		setSessionCookie(c, s.ID, maxAge, secure)
		c.Set(sessionKey, s)
		c.Next()
	}
}

func setSessionCookie(c *gin.Context, id string, maxAge time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, id, int(maxAge.Seconds()), "/", "", secure, true)
}

// SessionFrom returns the session attached by Sessions.
func SessionFrom(c *gin.Context) (*services.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*services.Session)
	return s, ok
}
