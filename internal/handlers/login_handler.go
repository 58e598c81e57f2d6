package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/bloglist/backend/internal/auth"
	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// LoginHandler handles password login, logout and session status
type LoginHandler struct {
	userRepository repositories.UserRepository
	jwtSecret      string
	secureCookies  bool
}

// NewLoginHandler creates a new LoginHandler
func NewLoginHandler(userRepo repositories.UserRepository, jwtSecret string, secureCookies bool) *LoginHandler {
	return &LoginHandler{
		userRepository: userRepo,
		jwtSecret:      jwtSecret,
		secureCookies:  secureCookies,
	}
}

// RegisterLoginRoutes registers login routes; status requires a session
func (h *LoginHandler) RegisterLoginRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/login", h.Login)
	g.POST("/login/logout", h.Logout)
	g.GET("/login/status", h.Status, requireAuth)
}

// Login authenticates a username/password pair and sets the session cookie.
// Unknown users and wrong passwords produce the same response.
func (h *LoginHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	token, err := auth.GenerateToken(user, h.jwtSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	auth.SetSessionCookie(c, token, h.secureCookies)

	return c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie
func (h *LoginHandler) Logout(c echo.Context) error {
	auth.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Status returns the user resolved from the current session
func (h *LoginHandler) Status(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}
