package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/srgjo27/livestock_booking/internal/core/services"
	"github.com/srgjo27/livestock_booking/internal/platform/auth"
)

const requesterKey = "requester"

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		log := s.logger.With().
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Logger()
		c.SetRequest(req.WithContext(log.WithContext(req.Context())))

		if err := next(c); err != nil {
			c.Error(err)
		}

		log.Info().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", c.Response().Status).
			Dur("latency", time.Since(start)).
			Msg("handled request")

		return nil
	}
}

// requireAuth resolves the bearer token into a services.Requester.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
		}

		claims, err := auth.ParseValidate(s.cfg.JWTSecret, strings.TrimSpace(token))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token").SetInternal(err)
		}

		id, err := uuid.Parse(claims.Sub)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token subject").SetInternal(err)
		}

		c.Set(requesterKey, services.Requester{ID: id, Email: claims.Email})
		return next(c)
	}
}

func requesterFrom(c echo.Context) services.Requester {
	r, _ := c.Get(requesterKey).(services.Requester)
	return r
}
