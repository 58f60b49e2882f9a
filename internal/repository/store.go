package repository

import (
	"context"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// Store is the read side of the PMS state plus the entry point for
// transactions.  Reads outside a transaction see committed state only.
// Lists are returned in ascending ID order, which is insertion order.
type Store interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
	GetRoom(ctx context.Context, id uint64) (model.Room, error)
	CountRooms(ctx context.Context) (int, error)
	// InsertRoom adds a catalog entry.  Used by seeding only.
	InsertRoom(ctx context.Context, room model.Room) (model.Room, error)

	ListGuests(ctx context.Context) ([]model.Guest, error)
	GetGuest(ctx context.Context, id uint64) (model.Guest, error)

	ListBookings(ctx context.Context) ([]model.Booking, error)
	GetBooking(ctx context.Context, id uint64) (model.Booking, error)
	BookingsByGuest(ctx context.Context, guestID uint64) ([]model.Booking, error)

	// Begin opens a transaction.  Every mutation of rooms and bookings
	// goes through a Tx so the booking write and the room write land
	// together or not at all.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a unit of work over one room and its bookings.  Callers hold
// the room's lock for the lifetime of the transaction and must finish
// it with exactly one of Commit or Rollback.  Rollback after Commit is
// a no-op so it can be deferred unconditionally.
type Tx interface {
	// LockRoom loads the room and, where the backend supports it, takes
	// a row lock that is held until the transaction ends.
	LockRoom(ctx context.Context, roomID uint64) (model.Room, error)
	SetRoomOccupancy(ctx context.Context, roomID uint64, status model.RoomStatus, guestID, bookingID *uint64) error
	SetRoomPrice(ctx context.Context, roomID uint64, price float64) error

	GetBooking(ctx context.Context, id uint64) (model.Booking, error)
	BookingsByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error)
	// InsertBooking stores b and returns it with its generated ID.
	InsertBooking(ctx context.Context, b model.Booking) (model.Booking, error)
	// UpdateBooking persists the status and timestamp fields of b.
	UpdateBooking(ctx context.Context, b model.Booking) error

	// InsertGuest returns ErrDuplicateEmail when the email is taken.
	InsertGuest(ctx context.Context, g model.Guest) (model.Guest, error)
	GuestByEmail(ctx context.Context, email string) (model.Guest, error)

	Commit() error
	Rollback() error
}
