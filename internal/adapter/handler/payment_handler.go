package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

type initializePaymentRequest struct {
	BookingID      string `json:"booking_id"`
	BookingIDCamel string `json:"bookingId"`
}

func (r initializePaymentRequest) bookingID() (uuid.UUID, error) {
	raw := r.BookingID
	if raw == "" {
		raw = r.BookingIDCamel
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: booking_id is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: booking_id is not a valid UUID", domain.ErrValidation)
	}
	return id, nil
}

func (s *Server) InitializePayment(c echo.Context) error {
	var req initializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid json body", domain.ErrValidation)
	}

	bookingID, err := req.bookingID()
	if err != nil {
		return err
	}

	resp, err := s.payments.InitializePayment(c.Request().Context(), requesterFrom(c), bookingID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, resp)
}

func (s *Server) VerifyPayment(c echo.Context) error {
	resp, err := s.payments.VerifyPayment(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return err
	}

	if resp.Status != domain.TransactionSuccess {
		return c.JSON(http.StatusOK, errorResponse{
			Success: false,
			Error:   "Payment verification failed",
			Data:    map[string]domain.TransactionStatus{"status": resp.Status},
		})
	}

	return respond(c, http.StatusOK, resp)
}

func (s *Server) PaymentStatus(c echo.Context) error {
	bookingID, err := pathUUID(c, "booking_id")
	if err != nil {
		return err
	}

	resp, err := s.payments.GetPaymentStatus(c.Request().Context(), requesterFrom(c).ID, bookingID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, resp)
}
