// Package handler exposes the PMS over HTTP.  Every response uses the
// envelope {"success": bool, "data": ..., "error": ...}.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-pms/internal/lock"
	"github.com/iliyamo/hotel-pms/internal/pms"
)

// requestTimeout bounds every service call made from a handler.
const requestTimeout = 10 * time.Second

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   any    `json:"error"`
	Details any    `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func fail(c echo.Context, status int, msg string, details any) error {
	return c.JSON(status, envelope{Success: false, Error: msg, Details: details})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// fromError maps a service error onto a status code and envelope.
// Anything unrecognised is logged and reported as a bare 500.
func fromError(c echo.Context, log *slog.Logger, err error) error {
	var (
		ie *pms.InputError
		ue *pms.UnavailableError
		te *pms.TransitionError
		ce *pms.ConsistencyError
	)
	switch {
	case errors.As(err, &ie):
		return fail(c, http.StatusBadRequest, "invalid input", ie.Fields)
	case errors.Is(err, pms.ErrInvalidDateRange),
		errors.Is(err, pms.ErrInvalidStatus),
		errors.Is(err, pms.ErrInvalidPrice):
		return fail(c, http.StatusBadRequest, err.Error(), nil)

	case errors.Is(err, pms.ErrRoomNotFound),
		errors.Is(err, pms.ErrGuestNotFound),
		errors.Is(err, pms.ErrBookingNotFound):
		return fail(c, http.StatusNotFound, err.Error(), nil)

	case errors.As(err, &ue):
		d := echo.Map{"room_id": ue.RoomID}
		if ue.BookingID != 0 {
			d["booking_id"] = ue.BookingID
		}
		return fail(c, http.StatusConflict, pms.ErrRoomUnavailable.Error(), d)
	case errors.As(err, &te):
		return fail(c, http.StatusConflict, te.Error(), echo.Map{
			"booking_id": te.BookingID, "from": te.From, "to": te.To,
		})
	case errors.As(err, &ce):
		return fail(c, http.StatusConflict, pms.ErrDataConsistency.Error(), echo.Map{
			"room_id": ce.RoomID, "date": ce.Date, "booking_ids": ce.BookingIDs,
		})
	case errors.Is(err, pms.ErrDuplicateEmail):
		return fail(c, http.StatusConflict, err.Error(), nil)

	case errors.Is(err, lock.ErrNotAcquired), errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out waiting for room", "error", err, "path", c.Path())
		return fail(c, http.StatusServiceUnavailable, "room is busy, retry shortly", nil)
	}
	log.Error("request failed", "error", err, "method", c.Request().Method, "path", c.Path())
	return fail(c, http.StatusInternalServerError, "internal error", nil)
}
