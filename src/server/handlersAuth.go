package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// userIDKey is the context key the middleware stores the verified user id
// under.
const userIDKey = "userID"

// CheckAuth guards every mutating route: it verifies the bearer credential
// and rejects the request before any handler logic runs.
func (a *AppHandler) CheckAuth(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if a.verifier == nil || header == "" || token == header {
		fail(c, http.StatusUnauthorized, "Authentication failed!")
		return
	}

	userID, err := a.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		logrus.WithError(err).Debug("bearer token rejected")
		fail(c, http.StatusUnauthorized, "Authentication failed!")
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// authedUser returns the user id CheckAuth stored for this request.
func authedUser(c *gin.Context) uint {
	value, _ := c.Get(userIDKey)
	userID, _ := value.(uint)
	return userID
}
