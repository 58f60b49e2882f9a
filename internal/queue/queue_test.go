package queue

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-pms/internal/model"
)

func sampleBooking() model.Booking {
	return model.Booking{
		ID:         12,
		RoomID:     3,
		GuestID:    7,
		CheckIn:    model.MustParseDate("2024-01-05"),
		CheckOut:   model.MustParseDate("2024-01-08"),
		TotalPrice: 450,
		Status:     model.BookingCheckedIn,
	}
}

func TestStatusChangedEvent(t *testing.T) {
	at := time.Date(2024, 1, 5, 11, 0, 0, 0, time.UTC)
	ev := NewStatusChanged(sampleBooking(), model.BookingConfirmed, ReasonHandOff, at)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, EventBookingStatusChanged, ev.Type)
	assert.Equal(t, model.BookingConfirmed, ev.FromStatus)
	assert.Equal(t, model.BookingCheckedIn, ev.ToStatus)

	line := ev.AuditLine()
	assert.True(t, strings.HasPrefix(line, "[2024-01-05T11:00:00Z] Booking confirmed -> checked_in"))
	assert.Contains(t, line, "booking_id=12")
	assert.Contains(t, line, "reason=handoff")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestAuditLogHandle(t *testing.T) {
	dir := t.TempDir()
	audit := NewAuditLog(dir)

	created := NewBookingCreated(sampleBooking(), time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	body, err := json.Marshal(created)
	require.NoError(t, err)
	require.NoError(t, audit.Handle(body))
	require.NoError(t, audit.Handle(body))

	data, err := os.ReadFile(audit.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Booking created")
	assert.Contains(t, lines[0], "stay=2024-01-05..2024-01-08")
	assert.Contains(t, lines[0], "total=450.00")
}

func TestAuditLogRejectsGarbage(t *testing.T) {
	audit := NewAuditLog(t.TempDir())
	assert.Error(t, audit.Handle([]byte("not json")))
	assert.Error(t, audit.Handle([]byte(`{"booking_id":1}`)))
	_, err := os.Stat(audit.Path())
	assert.True(t, os.IsNotExist(err))
}
