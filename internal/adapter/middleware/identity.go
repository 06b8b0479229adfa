package middleware

import (
	"net/http"
	"strings"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/pkg/id"

	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID   = "Ax-User-Id"
	HeaderUserRole = "Ax-User-Role"

	identityKey = "ax.identity"
)

// Identity reads the caller asserted by the gateway and stores it on the
// echo context. Requests without a valid identity are rejected with 401.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			userID := strings.TrimSpace(req.Header.Get(HeaderUserID))
			if !id.Valid(userID) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid " + HeaderUserID})
			}
			role, ok := access.ParseRole(req.Header.Get(HeaderUserRole))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid " + HeaderUserRole})
			}
			c.Set(identityKey, access.Identity{UserID: userID, Role: role})
			return next(c)
		}
	}
}

// IdentityFrom returns the caller stored by Identity, or the zero Identity.
func IdentityFrom(c echo.Context) access.Identity {
	who, _ := c.Get(identityKey).(access.Identity)
	return who
}
