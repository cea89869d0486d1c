package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"diswantin/internal/domain/models"
	"diswantin/internal/usecase"
)

// SessionCookie is the name of the login session cookie
const SessionCookie = "diswantin_session"

const userKey = "diswantin.user"

// Auth resolves the session cookie to a user and aborts with 401 when
// no valid session accompanies the request.
func Auth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookie)

		user, err := auth.Authenticate(c.Request.Context(), token, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "sign in to continue",
			})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// UserFrom returns the authenticated user stored by Auth
func UserFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
