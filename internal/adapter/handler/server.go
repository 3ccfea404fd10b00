package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/srgjo27/livestock_booking/internal/core/services"
)

type Config struct {
	Addr          string
	JWTSecret     string
	WebhookSecret string
	FrontendURL   string
}

type Server struct {
	e   *echo.Echo
	cfg Config

	bookings *services.BookingService
	payments *services.PaymentService
	logger   zerolog.Logger
	now      func() time.Time
}

func NewServer(
	cfg Config,
	bookings *services.BookingService,
	payments *services.PaymentService,
	logger zerolog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		e:        e,
		cfg:      cfg,
		bookings: bookings,
		payments: payments,
		logger:   logger.With().Str("component", "http").Logger(),
		now:      time.Now,
	}
	e.HTTPErrorHandler = srv.errorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	e.Use(srv.requestLogger)

	e.GET("/health", srv.Health)

	api := e.Group("/api")
	api.POST("/webhooks/payment", srv.PaymentWebhook)
	api.GET("/payments/verify/:reference", srv.VerifyPayment)

	authed := api.Group("", srv.requireAuth)
	authed.POST("/bookings", srv.CreateBooking)
	authed.GET("/bookings/my-bookings", srv.MyBookings)
	authed.GET("/bookings/:id", srv.GetBooking)
	authed.POST("/bookings/:id/cancel", srv.CancelBooking)
	authed.GET("/properties/:id/bookings", srv.PropertyBookings)
	authed.POST("/payments/initialize", srv.InitializePayment)
	authed.GET("/payments/status/:booking_id", srv.PaymentStatus)

	return srv
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start() error {
	err := s.e.Start(s.cfg.Addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}
