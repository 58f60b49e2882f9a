package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/pms"
)

// RoomHandler serves the room catalog and the property-level reports.
type RoomHandler struct {
	Svc *pms.Service
	Log *slog.Logger
}

func NewRoomHandler(svc *pms.Service, log *slog.Logger) *RoomHandler {
	if svc == nil {
		panic("nil service passed to NewRoomHandler")
	}
	return &RoomHandler{Svc: svc, Log: log}
}

// List: GET /v1/rooms
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rooms, err := h.Svc.ListRooms(ctx)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, rooms)
}

// Get: GET /v1/rooms/:id
func (h *RoomHandler) Get(c echo.Context) error {
	id, valid := pathID(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid room id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	room, err := h.Svc.GetRoom(ctx, id)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, room)
}

// CurrentGuest: GET /v1/rooms/:id/guest.  Data is null for a vacant room.
func (h *RoomHandler) CurrentGuest(c echo.Context) error {
	id, valid := pathID(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid room id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	g, err := h.Svc.GetRoomCurrentGuest(ctx, id)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if g == nil {
		return c.JSON(http.StatusOK, envelope{Success: true, Message: "room is vacant"})
	}
	return ok(c, http.StatusOK, g)
}

// Available: GET /v1/rooms/available?check_in=YYYY-MM-DD&check_out=YYYY-MM-DD
func (h *RoomHandler) Available(c echo.Context) error {
	fields := map[string]string{}
	in := dateParam(fields, "check_in", c.QueryParam("check_in"))
	out := dateParam(fields, "check_out", c.QueryParam("check_out"))
	if len(fields) > 0 {
		return fail(c, http.StatusBadRequest, "invalid input", fields)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rooms, err := h.Svc.GetAvailableRooms(ctx, in, out)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, rooms)
}

// Occupancy: GET /v1/occupancy
func (h *RoomHandler) Occupancy(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	st, err := h.Svc.GetOccupancyStats(ctx)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, st)
}

// HotelInfo: GET /v1/hotel-info
func (h *RoomHandler) HotelInfo(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	info, err := h.Svc.GetHotelInfo(ctx)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, info)
}

// dateParam parses a YYYY-MM-DD value, recording a problem in fields.
func dateParam(fields map[string]string, name, raw string) model.Date {
	if raw == "" {
		fields[name] = "required"
		return model.Date{}
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		fields[name] = "must be YYYY-MM-DD"
	}
	return d
}
