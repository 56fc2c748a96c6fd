package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// fallback identity when no JWT secret is configured (local development)
const devUserID = "dev-user-001"

// AuthMiddleware puts the acting user's id and role onto the context. The
// engine only consumes these for audit fields; token issuance lives in the
// external auth layer. Running without a secret is a development convenience
// only; anywhere else a missing secret rejects every request.
func AuthMiddleware(environment, jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if jwtSecret == "" {
				if environment != "development" {
					return echo.NewHTTPError(500, "auth secret is not configured")
				}
				c.Set("user_id", devUserID)
				return next(c)
			}

			auth := c.Request().Header.Get("Authorization")
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok {
				return echo.NewHTTPError(401, "missing bearer token")
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil {
				return echo.NewHTTPError(401, "invalid token")
			}

			sub, _ := claims["sub"].(string)
			role, _ := claims["role"].(string)
			c.Set("user_id", sub)
			c.Set("role", role)
			return next(c)
		}
	}
}
