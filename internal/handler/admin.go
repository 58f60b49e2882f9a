package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/pms"
)

// AdminHandler exposes the administrative room edit.  Routes using it
// must sit behind JWTAuth and RequireRole(ADMIN).
type AdminHandler struct {
	Svc *pms.Service
	Log *slog.Logger
}

func NewAdminHandler(svc *pms.Service, log *slog.Logger) *AdminHandler {
	if svc == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Svc: svc, Log: log}
}

type roomEditReq struct {
	Status    *string  `json:"status"`
	BasePrice *float64 `json:"base_price"`
}

// EditRoom: PUT /v1/admin/rooms/:id with optional status and base_price.
// A status change bypasses the booking ledger.
func (h *AdminHandler) EditRoom(c echo.Context) error {
	id, valid := pathID(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid room id", nil)
	}
	var req roomEditReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body", nil)
	}
	if req.Status == nil && req.BasePrice == nil {
		return fail(c, http.StatusBadRequest, "no valid fields to update", nil)
	}

	var edit pms.RoomEdit
	if req.Status != nil {
		st, valid := model.ParseRoomStatus(*req.Status)
		if !valid {
			return fail(c, http.StatusBadRequest, pms.ErrInvalidStatus.Error(), echo.Map{"status": *req.Status})
		}
		edit.Status = &st
	}
	edit.BasePrice = req.BasePrice

	ctx, cancel := reqCtx(c)
	defer cancel()
	room, err := h.Svc.EditRoom(ctx, id, edit)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	h.Log.Info("admin room edit", "room_id", id, "by", c.Get("user_id"))
	return ok(c, http.StatusOK, room)
}
