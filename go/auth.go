package roopetserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/Apurer/roopet-api/internal/domains/users/domain"
	userports "github.com/Apurer/roopet-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/roopet-api/internal/shared/errors"
)

const sessionContextKey = "roopet.session"

// RequireSession resolves the bearer token into a session or answers 401.
func RequireSession(users userports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
			return
		}
		session, err := users.Session(c.Request.Context(), token)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentSession(c *gin.Context) *userdomain.Session {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, _ := value.(*userdomain.Session)
	return session
}
