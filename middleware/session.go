package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/common/helper"
	"github.com/haeksim/noonsongi/common/logger"
)

const (
	sessionCookieName = "session"
	SessionIdKey      = "session_id"
)

// Sessions installs the signed cookie store holding the browser session id.
func Sessions() gin.HandlerFunc {
	store := cookie.NewStore([]byte(config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(config.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(sessionCookieName, store)
}

// SessionId makes sure every request belongs to a browser session. It must run after Sessions.
func SessionId() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(SessionIdKey).(string)
		if id == "" {
			id = helper.GenSessionID()
			session.Set(SessionIdKey, id)
			if err := session.Save(); err != nil {
				abortWithMessage(c, http.StatusInternalServerError, "failed to save session: "+err.Error())
				return
			}
			logger.Debugf(c.Request.Context(), "new browser session %s", id)
		}
		c.Set(SessionIdKey, id)
		c.Next()
	}
}

// GetSessionId returns the id set by SessionId.
func GetSessionId(c *gin.Context) string {
	return c.GetString(SessionIdKey)
}
