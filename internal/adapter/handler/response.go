package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, successResponse{Success: true, Data: data})
}

type BookingResponse struct {
	ID               uuid.UUID            `json:"id"`
	PropertyID       uuid.UUID            `json:"property_id"`
	RequesterID      uuid.UUID            `json:"farmer_id"`
	StartDate        string               `json:"start_date"`
	EndDate          string               `json:"end_date"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	Status           domain.BookingStatus `json:"status"`
	PaymentStatus    domain.PaymentStatus `json:"payment_status"`
	PaymentReference *string              `json:"payment_reference"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func toBookingResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		PropertyID:       b.PropertyID,
		RequesterID:      b.RequesterID,
		StartDate:        b.StartDate.Format(domain.DateLayout),
		EndDate:          b.EndDate.Format(domain.DateLayout),
		TotalAmount:      b.TotalAmount,
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		PaymentReference: b.PaymentReference,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func toBookingResponses(bs []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	return out
}

// BookedRangeResponse is the public view of a booking on a property's
// availability calendar.
type BookedRangeResponse struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Status    domain.BookingStatus `json:"status"`
}

func toBookedRanges(bs []domain.Booking) []BookedRangeResponse {
	out := make([]BookedRangeResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, BookedRangeResponse{
			StartDate: b.StartDate.Format(domain.DateLayout),
			EndDate:   b.EndDate.Format(domain.DateLayout),
			Status:    b.Status,
		})
	}
	return out
}

// errorStatus maps a domain error to its HTTP status and the message the
// client may see. Gateway and persistence details stay in the logs.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		if msg, isStr := he.Message.(string); isStr {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrGateway):
		return http.StatusInternalServerError, "Payment provider request failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := errorStatus(err)
	log := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		log = s.logger.Error()
	}
	log.Err(err).
		Int("status", status).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("request failed")

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorResponse{Success: false, Error: msg})
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("write error response")
	}
}
