// Package queue defines the booking lifecycle events exchanged over the
// message broker, the publisher used by the PMS service and the consumer
// that turns them into an audit log.
package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// Event types.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// ReasonHandOff marks a check-in performed automatically when the
// previous occupant of the room checked out.
const ReasonHandOff = "handoff"

// BookingEvent is published after a booking change has been committed.
// It carries enough of the booking for downstream consumers to log or
// notify without querying the PMS.
type BookingEvent struct {
	EventID    string              `json:"event_id"`
	Type       string              `json:"type"`
	BookingID  uint64              `json:"booking_id"`
	RoomID     uint64              `json:"room_id"`
	GuestID    uint64              `json:"guest_id"`
	CheckIn    model.Date          `json:"check_in"`
	CheckOut   model.Date          `json:"check_out"`
	TotalPrice float64             `json:"total_price"`
	FromStatus model.BookingStatus `json:"from_status,omitempty"`
	ToStatus   model.BookingStatus `json:"to_status"`
	Reason     string              `json:"reason,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewBookingCreated builds the event for a freshly inserted booking.
func NewBookingCreated(b model.Booking, at time.Time) BookingEvent {
	return newEvent(EventBookingCreated, b, "", "", at)
}

// NewStatusChanged builds the event for a transition from -> b.Status.
func NewStatusChanged(b model.Booking, from model.BookingStatus, reason string, at time.Time) BookingEvent {
	return newEvent(EventBookingStatusChanged, b, from, reason, at)
}

func newEvent(kind string, b model.Booking, from model.BookingStatus, reason string, at time.Time) BookingEvent {
	return BookingEvent{
		EventID:    uuid.NewString(),
		Type:       kind,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		GuestID:    b.GuestID,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		TotalPrice: b.TotalPrice,
		FromStatus: from,
		ToStatus:   b.Status,
		Reason:     reason,
		OccurredAt: at.UTC(),
	}
}

// AuditLine renders the event as one line of logs/booking.log.
func (ev BookingEvent) AuditLine() string {
	switch ev.Type {
	case EventBookingCreated:
		return fmt.Sprintf("[%s] Booking created | booking_id=%d | room_id=%d | guest_id=%d | stay=%s..%s | total=%.2f | event_id=%s\n",
			ev.OccurredAt.Format(time.RFC3339), ev.BookingID, ev.RoomID, ev.GuestID,
			ev.CheckIn, ev.CheckOut, ev.TotalPrice, ev.EventID)
	default:
		reason := ""
		if ev.Reason != "" {
			reason = " | reason=" + ev.Reason
		}
		return fmt.Sprintf("[%s] Booking %s -> %s | booking_id=%d | room_id=%d | guest_id=%d%s | event_id=%s\n",
			ev.OccurredAt.Format(time.RFC3339), ev.FromStatus, ev.ToStatus, ev.BookingID, ev.RoomID,
			ev.GuestID, reason, ev.EventID)
	}
}
