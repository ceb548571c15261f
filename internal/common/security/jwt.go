package security

import (
	"errors"
	"net/http"
	"time"

	"coursehub/internal/domain/model"
	"coursehub/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the HTTP-only cookie carrying the session token.
const CookieName = "auth-token"

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken issues a signed session token embedding the user identity.
// Tokens are only issued on register/login; there is no silent renewal.
func GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      now.Add(config.AppConfig.JWTExp).Unix(),
		"iat":      now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// TokenFromCookie extracts the session token from the auth cookie.
// Used alongside jwtauth.TokenFromHeader so either transport works.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetUserIDFromClaims pulls the numeric user id out of verified claims.
// jwx decodes JSON numbers as float64, so both forms are accepted.
func GetUserIDFromClaims(claims map[string]interface{}) (int64, error) {
	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, errors.New("user_id claim is missing or not a number")
	}
}

// SessionCookie builds the auth cookie for a freshly issued token.
// Secure is set in production; SameSite stays at Lax so top-level
// navigations keep the session.
func SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(config.AppConfig.JWTExp / time.Second),
		HttpOnly: true,
		Secure:   config.AppConfig.Production,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie expires the auth cookie immediately.
func ClearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.AppConfig.Production,
		SameSite: http.SameSiteLaxMode,
	}
}
