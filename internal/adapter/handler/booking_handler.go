package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/services"
)

func (s *Server) CreateBooking(c echo.Context) error {
	var req services.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid json body", domain.ErrValidation)
	}

	booking, err := s.bookings.CreateBooking(c.Request().Context(), requesterFrom(c).ID, req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, toBookingResponse(*booking))
}

func (s *Server) MyBookings(c echo.Context) error {
	bookings, err := s.bookings.ListMyBookings(c.Request().Context(), requesterFrom(c).ID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, toBookingResponses(bookings))
}

func (s *Server) GetBooking(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	booking, err := s.bookings.GetOwnedBooking(c.Request().Context(), requesterFrom(c).ID, id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, toBookingResponse(*booking))
}

func (s *Server) CancelBooking(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	booking, err := s.bookings.CancelBooking(c.Request().Context(), requesterFrom(c).ID, id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, toBookingResponse(*booking))
}

func (s *Server) PropertyBookings(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	bookings, err := s.bookings.ListPropertyBookings(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, toBookedRanges(bookings))
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid UUID", domain.ErrValidation, name)
	}
	return id, nil
}
