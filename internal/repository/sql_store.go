package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// SQLStore implements Store on MySQL.  Room serialisation across server
// processes comes from SELECT ... FOR UPDATE in LockRoom.
type SQLStore struct {
	db       *sql.DB
	rooms    *RoomRepo
	guests   *GuestRepo
	bookings *BookingRepo
}

// NewSQLStore wires the table repositories around one connection pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:       db,
		rooms:    NewRoomRepo(db),
		guests:   NewGuestRepo(db),
		bookings: NewBookingRepo(db),
	}
}

var _ Store = (*SQLStore)(nil)

// DB exposes the underlying pool for migrations and health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) ListRooms(ctx context.Context) ([]model.Room, error) { return s.rooms.List(ctx) }

func (s *SQLStore) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s *SQLStore) CountRooms(ctx context.Context) (int, error) { return s.rooms.Count(ctx) }

func (s *SQLStore) InsertRoom(ctx context.Context, room model.Room) (model.Room, error) {
	return s.rooms.Create(ctx, room)
}

func (s *SQLStore) ListGuests(ctx context.Context) ([]model.Guest, error) { return s.guests.List(ctx) }

func (s *SQLStore) GetGuest(ctx context.Context, id uint64) (model.Guest, error) {
	return s.guests.GetByID(ctx, id)
}

func (s *SQLStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *SQLStore) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *SQLStore) BookingsByGuest(ctx context.Context, guestID uint64) ([]model.Booking, error) {
	return s.bookings.ListByGuest(ctx, guestID)
}

// Begin opens a READ COMMITTED transaction.  Correctness relies on the
// room row lock, not on snapshot isolation.
func (s *SQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &sqlTx{tx: tx, s: s}, nil
}

type sqlTx struct {
	tx        *sql.Tx
	s         *SQLStore
	committed bool
}

func (t *sqlTx) LockRoom(ctx context.Context, roomID uint64) (model.Room, error) {
	return t.s.rooms.GetForUpdateTx(ctx, t.tx, roomID)
}

func (t *sqlTx) SetRoomOccupancy(ctx context.Context, roomID uint64, status model.RoomStatus, guestID, bookingID *uint64) error {
	return t.s.rooms.SetOccupancyTx(ctx, t.tx, roomID, status, guestID, bookingID)
}

func (t *sqlTx) SetRoomPrice(ctx context.Context, roomID uint64, price float64) error {
	return t.s.rooms.SetPriceTx(ctx, t.tx, roomID, price)
}

func (t *sqlTx) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	return t.s.bookings.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlTx) BookingsByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
	return t.s.bookings.ListByRoomTx(ctx, t.tx, roomID)
}

func (t *sqlTx) InsertBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	return t.s.bookings.CreateTx(ctx, t.tx, b)
}

func (t *sqlTx) UpdateBooking(ctx context.Context, b model.Booking) error {
	return t.s.bookings.UpdateTx(ctx, t.tx, b)
}

func (t *sqlTx) InsertGuest(ctx context.Context, g model.Guest) (model.Guest, error) {
	return t.s.guests.CreateTx(ctx, t.tx, g)
}

func (t *sqlTx) GuestByEmail(ctx context.Context, email string) (model.Guest, error) {
	return t.s.guests.GetByEmailTx(ctx, t.tx, email)
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTxDone
		}
		return err
	}
	t.committed = true
	return nil
}

func (t *sqlTx) Rollback() error {
	if t.committed {
		return nil
	}
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
