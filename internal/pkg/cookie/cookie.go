package cookie

import (
	"time"

	"github.com/gin-gonic/gin"
)

const SessionCookieName = "cart_session"

// Guest session cookie lifetime matches the guest cart TTL.
const sessionCookieTTL = 30 * 24 * time.Hour

func SetSessionID(c *gin.Context, sessionID string) {
	c.SetCookie(
		SessionCookieName,
		sessionID,
		int(sessionCookieTTL.Seconds()),
		"/",
		"",
		false,
		true, // HttpOnly
	)
}

func GetSessionID(c *gin.Context) string {
	sessionID, _ := c.Cookie(SessionCookieName)
	return sessionID
}

func ClearSessionID(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}
