package pms

import (
	"context"
	"math"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// GetOccupancyStats recomputes the occupancy summary from current state.
// Arrivals are confirmed bookings starting today; departures are
// checked-in bookings ending today.  The rate is a percentage rounded to
// two decimals, and 0 for an empty catalog.
func (s *Service) GetOccupancyStats(ctx context.Context) (model.OccupancyStats, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return model.OccupancyStats{}, err
	}
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return model.OccupancyStats{}, err
	}

	var st model.OccupancyStats
	st.TotalRooms = len(rooms)
	for _, r := range rooms {
		switch r.Status {
		case model.RoomOccupied:
			st.OccupiedRooms++
		case model.RoomAvailable:
			st.AvailableRooms++
		case model.RoomMaintenance:
			st.MaintenanceRooms++
		}
	}
	if st.TotalRooms > 0 {
		rate := float64(st.OccupiedRooms) / float64(st.TotalRooms) * 100
		st.OccupancyRate = math.Round(rate*100) / 100
	}

	today := s.Today()
	for _, b := range bookings {
		if b.Status == model.BookingConfirmed && b.CheckIn.Equal(today) {
			st.CheckInsToday++
		}
		if b.Status == model.BookingCheckedIn && b.CheckOut.Equal(today) {
			st.CheckOutsToday++
		}
	}
	return st, nil
}

// GetHotelInfo returns the configured property description with the
// current size of the room catalog.
func (s *Service) GetHotelInfo(ctx context.Context) (model.HotelInfo, error) {
	n, err := s.store.CountRooms(ctx)
	if err != nil {
		return model.HotelInfo{}, err
	}
	info := s.hotel
	info.TotalRooms = n
	info.Amenities = append([]string{}, s.hotel.Amenities...)
	return info, nil
}
