package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"net/http"

	"github.com/anonto42/bloglist/backend/internal/auth"
	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/anonto42/bloglist/backend/pkg/googleauth"
	"github.com/labstack/echo/v4"
)

const stateCookieName = "oauthstate"

// IdentityProvider exchanges external proof of identity for a stable
// external id plus profile fields
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*googleauth.Profile, error)
}

// OAuthHandler handles the Google login redirect flow. It converges on the
// same session cookie as password login.
type OAuthHandler struct {
	userRepository repositories.UserRepository
	provider       IdentityProvider
	jwtSecret      string
	clientOrigin   string
	secureCookies  bool
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(userRepo repositories.UserRepository, provider IdentityProvider, jwtSecret, clientOrigin string, secureCookies bool) *OAuthHandler {
	return &OAuthHandler{
		userRepository: userRepo,
		provider:       provider,
		jwtSecret:      jwtSecret,
		clientOrigin:   clientOrigin,
		secureCookies:  secureCookies,
	}
}

// RegisterOAuthRoutes registers the redirect flow endpoints
func (h *OAuthHandler) RegisterOAuthRoutes(g *echo.Group) {
	g.GET("/auth/google", h.GoogleLogin)
	g.GET("/auth/google/callback", h.GoogleCallback)
}

// GoogleLogin redirects the browser to Google's consent screen with a
// random state stored in a short-lived cookie
func (h *OAuthHandler) GoogleLogin(c echo.Context) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate state")
	}
	state := hex.EncodeToString(buf)

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookies,
	})

	return c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthURL(state))
}

// GoogleCallback completes the flow: it verifies the CSRF state, exchanges
// the code for a profile, finds or creates the matching user and issues the
// session cookie. Denials and failures redirect back to the client with no
// cookie set.
func (h *OAuthHandler) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("error") != "" {
		return c.Redirect(http.StatusTemporaryRedirect, h.clientOrigin)
	}

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.Redirect(http.StatusTemporaryRedirect, h.clientOrigin)
	}

	profile, err := h.provider.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		c.Logger().Errorf("google exchange failed: %v", err)
		return c.Redirect(http.StatusTemporaryRedirect, h.clientOrigin)
	}

	user, err := h.userRepository.GetUserByGoogleID(ctx, profile.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		user = &models.User{
			GoogleID: profile.ID,
			Name:     profile.Name,
			Username: models.GeneratedUsername(profile.Name, discriminator()),
		}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
		}
	}

	token, err := auth.GenerateToken(user, h.jwtSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	auth.SetSessionCookie(c, token, h.secureCookies)

	return c.Redirect(http.StatusTemporaryRedirect, h.clientOrigin+"/")
}

// discriminator picks the random numeric suffix for generated usernames
func discriminator() int {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}
