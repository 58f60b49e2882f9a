package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// BookingRepo reads and writes the bookings table.  Stay dates are DATE
// columns; lifecycle timestamps are nullable DATETIME(6) in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, room_id, guest_id, check_in, check_out, total_price, status, created_at, checked_in_at, checked_out_at`

const (
	qBookingList    = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY id`
	qBookingByID    = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	qBookingByGuest = `SELECT ` + bookingColumns + ` FROM bookings WHERE guest_id = ? ORDER BY id`
	qBookingByRoom  = `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? ORDER BY id`
	qBookingInsert  = `INSERT INTO bookings (room_id, guest_id, check_in, check_out, total_price, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	qBookingUpdate  = `UPDATE bookings SET status = ?, checked_in_at = ?, checked_out_at = ? WHERE id = ?`
)

func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	return listBookings(ctx, r.db, qBookingList)
}

func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return getBooking(ctx, r.db, id)
}

func (r *BookingRepo) ListByGuest(ctx context.Context, guestID uint64) ([]model.Booking, error) {
	return listBookings(ctx, r.db, qBookingByGuest, guestID)
}

func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	return getBooking(ctx, tx, id)
}

// ListByRoomTx returns every booking of a room regardless of status.
// The caller holds the room row lock, so the set cannot change under it.
func (r *BookingRepo) ListByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Booking, error) {
	return listBookings(ctx, tx, qBookingByRoom, roomID)
}

// CreateTx inserts b and returns it with the generated ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b model.Booking) (model.Booking, error) {
	res, err := tx.ExecContext(ctx, qBookingInsert,
		b.RoomID, b.GuestID, b.CheckIn, b.CheckOut, b.TotalPrice, string(b.Status), b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Booking{}, err
	}
	b.ID = uint64(id)
	return b, nil
}

// UpdateTx writes the lifecycle fields of b.  Dates, price and
// references are immutable after creation and are not touched.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b model.Booking) error {
	_, err := tx.ExecContext(ctx, qBookingUpdate,
		string(b.Status), nullTime(b.CheckedInAt), nullTime(b.CheckedOutAt), b.ID)
	return err
}

func getBooking(ctx context.Context, q querier, id uint64) (model.Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx, qBookingByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

func listBookings(ctx context.Context, q querier, query string, args ...any) ([]model.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b          model.Booking
		status     string
		checkedIn  sql.NullTime
		checkedOut sql.NullTime
	)
	if err := s.Scan(&b.ID, &b.RoomID, &b.GuestID, &b.CheckIn, &b.CheckOut, &b.TotalPrice,
		&status, &b.CreatedAt, &checkedIn, &checkedOut); err != nil {
		return model.Booking{}, err
	}
	b.Status = model.BookingStatus(status)
	b.CheckedInAt = timeFromNull(checkedIn)
	b.CheckedOutAt = timeFromNull(checkedOut)
	return b, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timeFromNull(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time.UTC()
	return &t
}
