package middleware

import (
	"strings"

	"tipmap-service/pkg/jwtutil"
	"tipmap-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserIDKey is the echo context key carrying the authenticated user id.
const UserIDKey = "user_id"

// SessionMiddleware resolves the optional session token issued by the
// external identity provider. A missing or invalid token leaves the request
// anonymous rather than rejecting it: anonymous submissions are a valid,
// first-class path.
func SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimPrefix(auth, "Bearer ")
			claims, err := jwtutil.ValidateToken(token)
			if err != nil {
				logger.FromContext(c).Warn("Invalid session token, continuing as anonymous", zap.Error(err))
			} else if claims.Subject != "" {
				c.Set(UserIDKey, claims.Subject)
			}
		}
		return next(c)
	}
}

// UserIDFromContext returns the session user id, or nil for anonymous requests.
func UserIDFromContext(c echo.Context) *string {
	if userID, ok := c.Get(UserIDKey).(string); ok && userID != "" {
		return &userID
	}
	return nil
}
