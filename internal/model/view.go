package model

import "time"

// NotAvailable is shown in place of display fields whose referenced
// record could not be resolved.
const NotAvailable = "N/A"

// CurrentGuest describes who is holding a room right now.  It is joined
// at read time from the room's current booking and never stored.
type CurrentGuest struct {
	GuestID   uint64 `json:"guest_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CheckIn   Date   `json:"check_in"`
	CheckOut  Date   `json:"check_out"`
	BookingID uint64 `json:"booking_id"`
}

// RoomView is a room enriched with its current guest.
type RoomView struct {
	Room
	CurrentGuest *CurrentGuest `json:"current_guest"`
}

// BookingView is a booking enriched with room and guest display fields.
type BookingView struct {
	Booking
	Nights     int    `json:"nights"`
	RoomNumber string `json:"room_number"`
	RoomType   string `json:"room_type"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
}

// RoomRef is the short form of a room used inside guest views.
type RoomRef struct {
	RoomID     uint64 `json:"room_id"`
	RoomNumber string `json:"room_number"`
	RoomType   string `json:"room_type"`
}

// GuestView is a guest with booking history, newest first, plus the
// booking and room they currently occupy, if any.
type GuestView struct {
	Guest
	Bookings       []BookingView `json:"bookings"`
	CurrentBooking *BookingView  `json:"current_booking"`
	CurrentRoom    *RoomRef      `json:"current_room"`
}

// CheckedInGuest is one row of the in-house guest list.
type CheckedInGuest struct {
	BookingID   uint64     `json:"booking_id"`
	GuestID     uint64     `json:"guest_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	RoomID      uint64     `json:"room_id"`
	RoomNumber  string     `json:"room_number"`
	RoomType    string     `json:"room_type"`
	CheckIn     Date       `json:"check_in"`
	CheckOut    Date       `json:"check_out"`
	CheckedInAt *time.Time `json:"checked_in_at"`
}

// OccupancyStats is the read-side summary of the property.
type OccupancyStats struct {
	TotalRooms       int     `json:"total_rooms"`
	OccupiedRooms    int     `json:"occupied_rooms"`
	AvailableRooms   int     `json:"available_rooms"`
	MaintenanceRooms int     `json:"maintenance_rooms"`
	OccupancyRate    float64 `json:"occupancy_rate"`
	CheckInsToday    int     `json:"check_ins_today"`
	CheckOutsToday   int     `json:"check_outs_today"`
}

// HotelInfo is the static property description served to guests.
type HotelInfo struct {
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Address      string   `json:"address"`
	TotalRooms   int      `json:"total_rooms"`
	Contact      string   `json:"contact"`
	Email        string   `json:"email"`
	Amenities    []string `json:"amenities"`
	CheckInTime  string   `json:"check_in_time"`
	CheckOutTime string   `json:"check_out_time"`
}
