package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func runAuth(t *testing.T, environment, secret, authHeader string) (echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	h := AuthMiddleware(environment, secret)(func(c echo.Context) error { return nil })
	return c, h(c)
}

func TestDevFallbackOnlyInDevelopment(t *testing.T) {
	c, err := runAuth(t, "development", "", "")
	if err != nil {
		t.Fatalf("development fallback rejected: %v", err)
	}
	if got := c.Get("user_id"); got != devUserID {
		t.Errorf("expected dev user id, got %v", got)
	}

	_, err = runAuth(t, "production", "", "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != 500 {
		t.Fatalf("expected 500 for missing secret outside development, got %v", err)
	}
}

func TestBearerTokenRequired(t *testing.T) {
	_, err := runAuth(t, "production", "topsecret", "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != 401 {
		t.Fatalf("expected 401 without bearer token, got %v", err)
	}
}

func TestValidTokenSetsIdentity(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin-7",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("topsecret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	c, err := runAuth(t, "production", "topsecret", "Bearer "+signed)
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if c.Get("user_id") != "admin-7" || c.Get("role") != "admin" {
		t.Errorf("claims not propagated: user_id=%v role=%v", c.Get("user_id"), c.Get("role"))
	}
}
