// Package auth extracts a request identity from the Authorization header.
// Two policies exist: RequireSession rejects anything without a valid
// bearer token, OptionalSession lets anonymous callers through with a
// well-known marker.
package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Engarr/Windmill-backend/internal/apperr"
	"github.com/Engarr/Windmill-backend/internal/tokens"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"

	// AnonymousID marks an unauthenticated caller in permissive mode.
	AnonymousID uint = 0

	// sentinelNoToken is what the storefront sends when nobody is
	// logged in yet.
	sentinelNoToken = "null"
)

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1], true
	}
	return header, true
}

// RequireSession is the strict policy: a missing, invalid or expired
// token rejects the request before the handler runs.
func RequireSession(sessions *tokens.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return apperr.Authentication("missing Authorization header")
			}

			claims, err := sessions.Verify(raw)
			if err != nil {
				return apperr.Authentication("invalid or expired session")
			}
			userID, err := claims.UserID()
			if err != nil {
				return apperr.Authentication("invalid or expired session")
			}

			c.Set(userIDKey, userID)
			c.Set(userEmailKey, claims.Email)
			return next(c)
		}
	}
}

// OptionalSession is the permissive policy: no header or the sentinel
// "null" token means an anonymous caller; an actual token still has to
// verify.
func OptionalSession(sessions *tokens.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok || raw == sentinelNoToken {
				c.Set(userIDKey, AnonymousID)
				return next(c)
			}

			claims, err := sessions.Verify(raw)
			if err != nil {
				return apperr.Authentication("invalid or expired session")
			}
			userID, err := claims.UserID()
			if err != nil {
				return apperr.Authentication("invalid or expired session")
			}

			c.Set(userIDKey, userID)
			c.Set(userEmailKey, claims.Email)
			return next(c)
		}
	}
}

func UserID(c echo.Context) uint {
	if v, ok := c.Get(userIDKey).(uint); ok {
		return v
	}
	return AnonymousID
}

func IsAnonymous(c echo.Context) bool {
	return UserID(c) == AnonymousID
}

func UserEmail(c echo.Context) string {
	if v, ok := c.Get(userEmailKey).(string); ok {
		return v
	}
	return ""
}
