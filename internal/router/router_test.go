package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hotel-pms/internal/clock"
	"github.com/iliyamo/hotel-pms/internal/config"
	"github.com/iliyamo/hotel-pms/internal/handler"
	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/pms"
	"github.com/iliyamo/hotel-pms/internal/repository/memory"
)

const testSecret = "test-secret"

type api struct {
	e     *echo.Echo
	clock *clock.FakeClock
}

type reply struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details map[string]any  `json:"details"`
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := memory.New()
	for i, price := range []float64{3500, 4500} {
		_, err := store.InsertRoom(context.Background(), model.Room{
			Number: fmt.Sprintf("10%d", i+1), Type: "Deluxe", BasePrice: price, Floor: 1,
		})
		require.NoError(t, err)
	}
	clk := clock.Fake(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := pms.New(store, pms.Options{Clock: clk, Logger: log, PhoneCountryCode: "91"})

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 5, AdminPasswordHash: string(hash)}

	e := echo.New()
	Register(e, Handlers{
		Rooms:    handler.NewRoomHandler(svc, log),
		Bookings: handler.NewBookingHandler(svc, log),
		Guests:   handler.NewGuestHandler(svc, log),
		Admin:    handler.NewAdminHandler(svc, log),
		Auth:     handler.NewAuthHandler(cfg, nil, log),
	}, Extras{}, testSecret)
	return &api{e: e, clock: clk}
}

func (a *api) do(t *testing.T, method, path, body string, hdr ...string) (int, reply) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	var out reply
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func booking(room int, in, out, email string) string {
	return fmt.Sprintf(`{"room_id":%d,"guest_name":"Asha Rao","guest_email":%q,"guest_phone":"+91 98765 43210","check_in":%q,"check_out":%q}`,
		room, email, in, out)
}

func TestCreateAndConflict(t *testing.T) {
	a := newAPI(t)

	code, res := a.do(t, http.MethodPost, "/v1/bookings", booking(1, "2024-03-10", "2024-03-12", "asha@example.com"))
	require.Equal(t, http.StatusCreated, code)
	require.True(t, res.Success)
	var b model.Booking
	require.NoError(t, json.Unmarshal(res.Data, &b))
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, 7000.0, b.TotalPrice)

	code, res = a.do(t, http.MethodPost, "/v1/bookings", booking(1, "2024-03-11", "2024-03-13", "other@example.com"))
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, res.Success)
	assert.EqualValues(t, b.ID, res.Details["booking_id"])

	code, _ = a.do(t, http.MethodPost, "/v1/bookings", booking(1, "2024-03-12", "2024-03-14", "other@example.com"))
	assert.Equal(t, http.StatusCreated, code)
}

func TestCreateValidation(t *testing.T) {
	a := newAPI(t)

	code, res := a.do(t, http.MethodPost, "/v1/bookings", `{"guest_name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, res.Details, "room_id")
	assert.Contains(t, res.Details, "check_in")

	code, _ = a.do(t, http.MethodPost, "/v1/bookings", booking(1, "2024-03-12", "2024-03-12", "a@example.com"))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(t, http.MethodPost, "/v1/bookings", booking(99, "2024-03-12", "2024-03-13", "a@example.com"))
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(t, http.MethodPost, "/v1/bookings", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = a.do(t, http.MethodPost, "/v1/bookings", booking(1, "2024-03-12", "2024-03-13", "not-an-email"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "must be an email address", res.Details["guest_email"])

	code, res = a.do(t, http.MethodPost, "/v1/bookings", `{"room_id":1,"check_in":"2024-03-12","check_out":"2024-03-13"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, res.Details, "guest_name")
	assert.Contains(t, res.Details, "guest_email")
	assert.Contains(t, res.Details, "guest_phone")
}

func TestLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, res := a.do(t, http.MethodPost, "/v1/bookings", booking(1, "2024-03-10", "2024-03-12", "asha@example.com"))
	var b model.Booking
	require.NoError(t, json.Unmarshal(res.Data, &b))
	path := fmt.Sprintf("/v1/bookings/%d", b.ID)

	code, _ := a.do(t, http.MethodPut, path, `{"status":"checked_out"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(t, http.MethodPut, path, `{"status":"sleeping"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(t, http.MethodPut, path, `{"status":"checked_in"}`)
	require.Equal(t, http.StatusOK, code)

	code, res = a.do(t, http.MethodGet, "/v1/rooms/1/guest", "")
	require.Equal(t, http.StatusOK, code)
	var cg model.CurrentGuest
	require.NoError(t, json.Unmarshal(res.Data, &cg))
	assert.Equal(t, "Asha Rao", cg.Name)
	assert.Equal(t, b.ID, cg.BookingID)

	code, res = a.do(t, http.MethodGet, "/v1/occupancy", "")
	require.Equal(t, http.StatusOK, code)
	var st model.OccupancyStats
	require.NoError(t, json.Unmarshal(res.Data, &st))
	assert.Equal(t, 1, st.OccupiedRooms)
	assert.Equal(t, 50.0, st.OccupancyRate)

	code, _ = a.do(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, code)

	code, res = a.do(t, http.MethodGet, "/v1/rooms/1", "")
	require.Equal(t, http.StatusOK, code)
	var rv model.RoomView
	require.NoError(t, json.Unmarshal(res.Data, &rv))
	assert.Equal(t, model.RoomAvailable, rv.Status)
	assert.Nil(t, rv.CurrentGuest)
}

func TestSelfCheckInAndLookup(t *testing.T) {
	a := newAPI(t)
	code, _ := a.do(t, http.MethodPost, "/v1/bookings", booking(2, "2024-03-10", "2024-03-11", "asha@example.com"))
	require.Equal(t, http.StatusCreated, code)

	code, res := a.do(t, http.MethodGet, "/v1/bookings/lookup?phone=9876543210", "")
	require.Equal(t, http.StatusOK, code)
	var v model.BookingView
	require.NoError(t, json.Unmarshal(res.Data, &v))
	assert.Equal(t, "102", v.RoomNumber)

	code, _ = a.do(t, http.MethodPost, "/v1/check-in", `{"name":"someone else","phone":"9876543210"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, res = a.do(t, http.MethodPost, "/v1/check-in", `{"name":" asha rao ","phone":"919876543210"}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(res.Data, &v))
	assert.Equal(t, model.BookingCheckedIn, v.Status)

	code, res = a.do(t, http.MethodGet, "/v1/guests/checked-in", "")
	require.Equal(t, http.StatusOK, code)
	var rows []model.CheckedInGuest
	require.NoError(t, json.Unmarshal(res.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "102", rows[0].RoomNumber)
}

func TestAvailableRooms(t *testing.T) {
	a := newAPI(t)
	a.do(t, http.MethodPost, "/v1/bookings", booking(1, "2024-03-10", "2024-03-12", "asha@example.com"))

	code, res := a.do(t, http.MethodGet, "/v1/rooms/available?check_in=2024-03-11&check_out=2024-03-13", "")
	require.Equal(t, http.StatusOK, code)
	var rooms []model.Room
	require.NoError(t, json.Unmarshal(res.Data, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "102", rooms[0].Number)

	code, res = a.do(t, http.MethodGet, "/v1/rooms/available?check_in=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, res.Details, "check_in")
	assert.Contains(t, res.Details, "check_out")
}

func TestAdminRequiresToken(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do(t, http.MethodPut, "/v1/admin/rooms/1", `{"status":"maintenance"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(t, http.MethodPost, "/v1/auth/token", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res := a.do(t, http.MethodPost, "/v1/auth/token", `{"password":"letmein"}`)
	require.Equal(t, http.StatusOK, code)
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &tok))
	bearer := []string{echo.HeaderAuthorization, "Bearer " + tok.Token}

	code, _ = a.do(t, http.MethodPut, "/v1/admin/rooms/1", `{"base_price":0}`, bearer...)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(t, http.MethodPut, "/v1/admin/rooms/1", `{"status":"broken"}`, bearer...)
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = a.do(t, http.MethodPut, "/v1/admin/rooms/1", `{"status":"maintenance","base_price":3900}`, bearer...)
	require.Equal(t, http.StatusOK, code)
	var r model.Room
	require.NoError(t, json.Unmarshal(res.Data, &r))
	assert.Equal(t, model.RoomMaintenance, r.Status)
	assert.Equal(t, 3900.0, r.BasePrice)

	code, res = a.do(t, http.MethodPost, "/v1/bookings", booking(1, "2024-03-20", "2024-03-21", "asha@example.com"))
	assert.Equal(t, http.StatusConflict, code)
	assert.NotContains(t, res.Details, "booking_id")
}

func TestNotFoundAndBadIDs(t *testing.T) {
	a := newAPI(t)
	for _, p := range []string{"/v1/rooms/42", "/v1/bookings/42", "/v1/guests/42"} {
		code, res := a.do(t, http.MethodGet, p, "")
		assert.Equal(t, http.StatusNotFound, code, p)
		assert.False(t, res.Success)
	}
	code, _ := a.do(t, http.MethodGet, "/v1/rooms/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
