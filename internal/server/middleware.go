package server

import (
	"net/http"
	"strings"

	"finpulse/internal/auth"

	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the bearer token passed via Authorization
// header and sets the authenticated user id on the echo Context.
func (s *Server) JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "No authorization")
		}

		token := strings.TrimPrefix(header, "Bearer ")

		userId, err := s.tokens.VerifyToken(token)
		if err != nil {
			if err == auth.ErrTokenExpired {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		c.Set("userId", userId)

		return next(c)
	}
}

// AdminMiddleware guards the endpoints used by the management CLI and the
// scheduler trigger with a shared secret.
func (s *Server) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret := c.Request().Header.Get("Authorization")
		if secret == "" || s.cliSecret == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}

		secret = strings.TrimPrefix(secret, "Bearer ")

		if secret != s.cliSecret {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}

		return next(c)
	}
}

func (s *Server) userId(c echo.Context) int {
	id, _ := c.Get("userId").(int)
	return id
}
