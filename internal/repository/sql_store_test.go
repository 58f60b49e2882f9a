package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-pms/internal/model"
)

var (
	roomCols    = []string{"id", "room_number", "room_type", "base_price", "floor", "amenities", "status", "current_guest_id", "current_booking_id"}
	bookingCols = []string{"id", "room_id", "guest_id", "check_in", "check_out", "total_price", "status", "created_at", "checked_in_at", "checked_out_at"}
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db), mock
}

func TestSQLStoreGetRoom(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(qRoomByID)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(1, "101", "Deluxe", "150.00", 1, `["AC","WiFi"]`, "occupied", 4, 9))

	room, err := s.GetRoom(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "101", room.Number)
	assert.Equal(t, 150.0, room.BasePrice)
	assert.Equal(t, []string{"AC", "WiFi"}, room.Amenities)
	assert.Equal(t, model.RoomOccupied, room.Status)
	require.NotNil(t, room.CurrentGuestID)
	assert.Equal(t, uint64(4), *room.CurrentGuestID)
	require.NotNil(t, room.CurrentBookingID)
	assert.Equal(t, uint64(9), *room.CurrentBookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetRoomNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(qRoomByID)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(roomCols))

	_, err := s.GetRoom(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreBookingTransaction(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(qRoomForUpdate)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(1, "101", "Deluxe", 100.0, 1, `[]`, "available", nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta(qBookingByRoom)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(3, 1, 2, "2023-12-20", "2023-12-22", 200.0, "checked_out", created, created, created))
	mock.ExpectExec(regexp.QuoteMeta(qBookingInsert)).
		WithArgs(1, 2, "2024-01-01", "2024-01-05", 400.0, "confirmed", created).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(regexp.QuoteMeta(qRoomOccupancy)).
		WithArgs("occupied", 2, 10, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	room, err := tx.LockRoom(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, room.Amenities)
	assert.Nil(t, room.CurrentBookingID)

	existing, err := tx.BookingsByRoom(ctx, 1)
	require.NoError(t, err)
	require.Len(t, existing, 1)
	assert.Equal(t, model.BookingCheckedOut, existing[0].Status)
	assert.Equal(t, model.MustParseDate("2023-12-20"), existing[0].CheckIn)
	require.NotNil(t, existing[0].CheckedOutAt)

	b, err := tx.InsertBooking(ctx, model.Booking{
		RoomID:     1,
		GuestID:    2,
		CheckIn:    model.MustParseDate("2024-01-01"),
		CheckOut:   model.MustParseDate("2024-01-05"),
		TotalPrice: 400,
		Status:     model.BookingConfirmed,
		CreatedAt:  created,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), b.ID)

	require.NoError(t, tx.SetRoomOccupancy(ctx, 1, model.RoomOccupied, model.ID(2), model.ID(b.ID)))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreDuplicateGuest(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(qGuestInsert)).
		WithArgs("Asha", "asha@example.com", "9876543210", "", created).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectQuery(regexp.QuoteMeta(qGuestByEmail)).
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "id_proof", "created_at"}).
			AddRow(5, "Asha", "asha@example.com", "9876543210", nil, created))
	mock.ExpectRollback()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.InsertGuest(ctx, model.Guest{Name: "Asha", Email: " Asha@Example.com", Phone: "9876543210", CreatedAt: created})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	g, err := tx.GuestByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), g.ID)
	assert.Equal(t, "", g.IDProof)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreRollbackAfterCommitIsNoop(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
