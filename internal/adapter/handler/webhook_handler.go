package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/srgjo27/livestock_booking/internal/adapter/gateway/paystack"
)

const (
	HeaderGatewaySignature  = "X-Gateway-Signature"
	HeaderPaystackSignature = "X-Paystack-Signature"
)

// PaymentWebhook authenticates a gateway callback against the raw body and
// acknowledges it. Once the signature passes the response is always 200;
// reconciliation failures are queued for retry by the payment service.
func (s *Server) PaymentWebhook(c echo.Context) error {
	log := zerolog.Ctx(c.Request().Context())

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read request body").SetInternal(err)
	}

	signature := c.Request().Header.Get(HeaderGatewaySignature)
	if signature == "" {
		signature = c.Request().Header.Get(HeaderPaystackSignature)
	}

	if err := paystack.VerifySignature(s.cfg.WebhookSecret, body, signature); err != nil {
		log.Warn().Err(err).Str("remote_ip", c.RealIP()).Msg("webhook signature rejected")
		return c.JSON(http.StatusBadRequest, errorResponse{Success: false, Error: "Invalid signature"})
	}

	evt, err := paystack.ParseWebhookEvent(body)
	if err != nil {
		log.Error().Err(err).Msg("malformed webhook payload dropped")
		return c.JSON(http.StatusOK, map[string]string{"status": "success"})
	}

	result := s.payments.HandleWebhookEvent(c.Request().Context(), evt.Event, evt.Outcome())
	log.Info().
		Str("event", evt.Event).
		Str("reference", evt.Data.Reference).
		Str("result", string(result)).
		Msg("webhook processed")

	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}
