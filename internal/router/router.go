// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-pms/internal/handler"
	"github.com/iliyamo/hotel-pms/internal/middleware"
	"github.com/iliyamo/hotel-pms/internal/utils"
)

// Handlers bundles everything Register mounts.
type Handlers struct {
	Rooms    *handler.RoomHandler
	Bookings *handler.BookingHandler
	Guests   *handler.GuestHandler
	Admin    *handler.AdminHandler
	Auth     *handler.AuthHandler
	Ready    echo.HandlerFunc
}

// Extras are the optional Redis-backed middlewares.  Nil entries are
// skipped.
type Extras struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterRoutes mounts the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready)
	}
}

// Register mounts the whole API.  Everything under /v1 passes the rate
// limiter; /v1/admin additionally requires an ADMIN token.
func Register(e *echo.Echo, h Handlers, x Extras, jwtSecret string) {
	e.Validator = handler.NewValidator()
	RegisterRoutes(e, h.Ready)

	v1 := e.Group("/v1")
	if x.RateLimit != nil {
		v1.Use(x.RateLimit)
	}

	info := []echo.MiddlewareFunc{}
	if x.Cache != nil {
		info = append(info, x.Cache)
	}
	v1.GET("/hotel-info", h.Rooms.HotelInfo, info...)
	v1.GET("/occupancy", h.Rooms.Occupancy)

	// static segments before :id
	v1.GET("/rooms", h.Rooms.List)
	v1.GET("/rooms/available", h.Rooms.Available)
	v1.GET("/rooms/:id", h.Rooms.Get)
	v1.GET("/rooms/:id/guest", h.Rooms.CurrentGuest)

	v1.GET("/bookings", h.Bookings.List)
	v1.POST("/bookings", h.Bookings.Create)
	v1.GET("/bookings/lookup", h.Bookings.Lookup)
	v1.GET("/bookings/:id", h.Bookings.Get)
	v1.PUT("/bookings/:id", h.Bookings.UpdateStatus)
	v1.DELETE("/bookings/:id", h.Bookings.Cancel)
	v1.POST("/check-in", h.Bookings.CheckIn)

	v1.GET("/guests", h.Guests.List)
	v1.GET("/guests/checked-in", h.Guests.CheckedIn)
	v1.GET("/guests/:id", h.Guests.Get)

	v1.POST("/auth/token", h.Auth.Token)

	admin := v1.Group("/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole(utils.RoleAdmin))
	admin.PUT("/rooms/:id", h.Admin.EditRoom)
}
