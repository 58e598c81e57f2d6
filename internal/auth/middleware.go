package auth

import (
	"net/http"

	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// Middleware resolves the session cookie to a live user record and attaches
// it to the request context. Requests with a missing, invalid or expired
// token, or whose user no longer exists, are rejected with 401.
func Middleware(users repositories.UserRepository, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing")
			}

			claims, err := ParseToken(cookie.Value, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token invalid or expired")
			}

			user, err := users.GetUserByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Middleware, or nil on routes
// that did not pass through it
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

// SetCurrentUser attaches a resolved user to the request context
func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(userContextKey, user)
}
