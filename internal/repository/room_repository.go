package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so that a query can
// be written once and run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// RoomRepo reads and writes the rooms table.  Amenities are stored as a
// JSON array; the occupancy references are nullable.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to db.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, room_number, room_type, base_price, floor, amenities, status, current_guest_id, current_booking_id`

const (
	qRoomList      = `SELECT ` + roomColumns + ` FROM rooms ORDER BY id`
	qRoomByID      = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	qRoomForUpdate = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? FOR UPDATE`
	qRoomCount     = `SELECT COUNT(*) FROM rooms`
	qRoomInsert    = `INSERT INTO rooms (room_number, room_type, base_price, floor, amenities, status) VALUES (?, ?, ?, ?, ?, ?)`
	qRoomOccupancy = `UPDATE rooms SET status = ?, current_guest_id = ?, current_booking_id = ? WHERE id = ?`
	qRoomPrice     = `UPDATE rooms SET base_price = ? WHERE id = ?`
)

// List returns every room ordered by ID.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, qRoomList)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// GetByID loads one room.  ErrNotFound when missing.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	return getRoom(ctx, r.db, qRoomByID, id)
}

// GetForUpdateTx loads a room and holds its row lock until tx ends.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
	return getRoom(ctx, tx, qRoomForUpdate, id)
}

// Count returns the size of the catalog.
func (r *RoomRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, qRoomCount).Scan(&n)
	return n, err
}

// Create inserts a catalog entry and fills in the generated ID.
func (r *RoomRepo) Create(ctx context.Context, room model.Room) (model.Room, error) {
	room.Amenities = model.NormalizeAmenities(room.Amenities)
	if room.Status == "" {
		room.Status = model.RoomAvailable
	}
	amenities, err := json.Marshal(room.Amenities)
	if err != nil {
		return model.Room{}, err
	}
	res, err := r.db.ExecContext(ctx, qRoomInsert,
		room.Number, room.Type, room.BasePrice, room.Floor, string(amenities), string(room.Status))
	if err != nil {
		return model.Room{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Room{}, err
	}
	room.ID = uint64(id)
	return room, nil
}

// SetOccupancyTx overwrites all three occupancy fields in one statement.
func (r *RoomRepo) SetOccupancyTx(ctx context.Context, tx *sql.Tx, id uint64, status model.RoomStatus, guestID, bookingID *uint64) error {
	_, err := tx.ExecContext(ctx, qRoomOccupancy, string(status), nullID(guestID), nullID(bookingID), id)
	return err
}

// SetPriceTx changes the nightly base price.
func (r *RoomRepo) SetPriceTx(ctx context.Context, tx *sql.Tx, id uint64, price float64) error {
	_, err := tx.ExecContext(ctx, qRoomPrice, price, id)
	return err
}

func getRoom(ctx context.Context, q querier, query string, id uint64) (model.Room, error) {
	room, err := scanRoom(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrNotFound
	}
	return room, err
}

func scanRoom(s rowScanner) (model.Room, error) {
	var (
		room      model.Room
		status    string
		amenities sql.NullString
		guestID   sql.NullInt64
		bookingID sql.NullInt64
	)
	if err := s.Scan(&room.ID, &room.Number, &room.Type, &room.BasePrice, &room.Floor,
		&amenities, &status, &guestID, &bookingID); err != nil {
		return model.Room{}, err
	}
	room.Status = model.RoomStatus(status)
	room.Amenities = []string{}
	if amenities.Valid && amenities.String != "" {
		if err := json.Unmarshal([]byte(amenities.String), &room.Amenities); err != nil {
			return model.Room{}, fmt.Errorf("room %d amenities: %w", room.ID, err)
		}
	}
	room.CurrentGuestID = idFromNull(guestID)
	room.CurrentBookingID = idFromNull(bookingID)
	return room, nil
}

func nullID(p *uint64) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func idFromNull(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}
