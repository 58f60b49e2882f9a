package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/pms"
)

// BookingHandler serves the booking ledger and front desk check-in.
type BookingHandler struct {
	Svc *pms.Service
	Log *slog.Logger
}

func NewBookingHandler(svc *pms.Service, log *slog.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Log: log}
}

// ----- DTOs -----

type createBookingReq struct {
	RoomID     uint64 `json:"room_id" validate:"required"`
	GuestName  string `json:"guest_name" validate:"required"`
	GuestEmail string `json:"guest_email" validate:"required,email"`
	GuestPhone string `json:"guest_phone" validate:"required"`
	IDProof    string `json:"id_proof"`
	CheckIn    string `json:"check_in" validate:"required"`
	CheckOut   string `json:"check_out" validate:"required"`
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

type checkInReq struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// List: GET /v1/bookings
func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	bookings, err := h.Svc.ListBookings(ctx)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, bookings)
}

// Create: POST /v1/bookings
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body", nil)
	}
	fields := map[string]string{}
	if err := c.Validate(&req); err != nil {
		if fields = fieldErrors(err); fields == nil {
			return fromError(c, h.Log, err)
		}
	}
	var in, out model.Date
	if _, missing := fields["check_in"]; !missing {
		in = dateParam(fields, "check_in", strings.TrimSpace(req.CheckIn))
	}
	if _, missing := fields["check_out"]; !missing {
		out = dateParam(fields, "check_out", strings.TrimSpace(req.CheckOut))
	}
	if len(fields) > 0 {
		return fail(c, http.StatusBadRequest, "invalid input", fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Svc.CreateBooking(ctx, req.RoomID, model.GuestInfo{
		Name:    req.GuestName,
		Email:   req.GuestEmail,
		Phone:   req.GuestPhone,
		IDProof: req.IDProof,
	}, in, out)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, b)
}

// Get: GET /v1/bookings/:id
func (h *BookingHandler) Get(c echo.Context) error {
	id, valid := pathID(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid booking id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Svc.GetBooking(ctx, id)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, b)
}

// UpdateStatus: PUT /v1/bookings/:id with {"status": "..."}
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, valid := pathID(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid booking id", nil)
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "no valid fields to update", fieldErrors(err))
	}
	to, valid := model.ParseBookingStatus(req.Status)
	if !valid {
		return fail(c, http.StatusBadRequest, pms.ErrInvalidStatus.Error(), echo.Map{"status": req.Status})
	}
	return h.move(c, id, to)
}

// Cancel: DELETE /v1/bookings/:id
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, valid := pathID(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid booking id", nil)
	}
	return h.move(c, id, model.BookingCancelled)
}

func (h *BookingHandler) move(c echo.Context, id uint64, to model.BookingStatus) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Svc.UpdateBookingStatus(ctx, id, to)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, b)
}

// Lookup: GET /v1/bookings/lookup?phone=
func (h *BookingHandler) Lookup(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Svc.FindActiveBookingByPhone(ctx, c.QueryParam("phone"))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, b)
}

// CheckIn: POST /v1/check-in with {"name", "phone"}
func (h *BookingHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid input", fieldErrors(err))
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Svc.CheckInGuest(ctx, req.Name, req.Phone)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, b)
}
