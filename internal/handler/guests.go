package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-pms/internal/pms"
)

// GuestHandler serves guest profiles.
type GuestHandler struct {
	Svc *pms.Service
	Log *slog.Logger
}

func NewGuestHandler(svc *pms.Service, log *slog.Logger) *GuestHandler {
	if svc == nil {
		panic("nil service passed to NewGuestHandler")
	}
	return &GuestHandler{Svc: svc, Log: log}
}

// List: GET /v1/guests
func (h *GuestHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	guests, err := h.Svc.ListGuests(ctx)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, guests)
}

// CheckedIn: GET /v1/guests/checked-in
func (h *GuestHandler) CheckedIn(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.Svc.ListCheckedInGuests(ctx)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, rows)
}

// Get: GET /v1/guests/:id
func (h *GuestHandler) Get(c echo.Context) error {
	id, valid := pathID(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid guest id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	g, err := h.Svc.GetGuest(ctx, id)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, g)
}
