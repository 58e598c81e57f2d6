package auth

import (
	"net/http"
	"time"

	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	// CookieName is the cookie carrying the session token
	CookieName = "token"

	// TokenTTL is the signed token's lifetime. The cookie outlives the
	// token (see CookieMaxAge); an expired token inside a live cookie is
	// rejected and the client re-authenticates.
	TokenTTL = time.Hour

	// CookieMaxAge is the wall-clock lifetime of the session cookie
	CookieMaxAge = 24 * time.Hour
)

// GenerateToken signs a session token for the given user. Both issuance
// paths (password login and the OAuth callback) converge here.
func GenerateToken(user *models.User, secret string) (string, error) {
	claims := &models.SessionClaims{
		Username: user.Username,
		UserID:   user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of a session token and
// returns its claims
func ParseToken(tokenString, secret string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// SetSessionCookie attaches the session token to the response as an
// HTTP-only cookie
func SetSessionCookie(c echo.Context, token string, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteStrictMode
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

// ClearSessionCookie expires the session cookie. Logout is stateless: a
// previously issued token stays valid until its natural expiry.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
