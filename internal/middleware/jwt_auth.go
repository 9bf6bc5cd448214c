package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/campushub/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// ClaimsContextKey is where the verified *models.JwtCustomClaims are stored.
const ClaimsContextKey = "user"

var errMalformedHeader = errors.New("authorization header must be \"Bearer <token>\"")

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
		return "", errMalformedHeader
	}
	return token, nil
}

// JWTAuthMiddleware rejects requests without a valid bearer token and
// stores the token's claims under ClaimsContextKey.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}
			raw, err := bearerToken(header)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := ParseToken(raw, secret)
			switch {
			case err == nil:
			case errors.Is(err, jwt.ErrTokenExpired):
				return echo.NewHTTPError(http.StatusUnauthorized, "Token expired")
			case errors.Is(err, jwt.ErrSignatureInvalid):
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ClaimsContextKey, claims)
			return next(c)
		}
	}
}

// ParseToken verifies an HMAC-signed token and returns its claims.
func ParseToken(raw, secret string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}
	if _, err := jwt.ParseWithClaims(raw, claims, keyFunc); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errors.New("token carries no user id")
	}
	return claims, nil
}
