package response

import (
	"club-scheduler/internal/usecase/commands"
	"club-scheduler/internal/usecase/queries"
)

// BookingResponse is returned for both accepted (201) and rejected (409)
// bookings. A rejection carries reasons and, when one exists, the next slot
// that would fit.
type BookingResponse struct {
	Reservation       *queries.ReservationView  `json:"reservation,omitempty"`
	Availability      *queries.AvailabilityView `json:"availability,omitempty"`
	Reasons           []string                  `json:"reasons,omitempty"`
	NextAvailableSlot *queries.SlotView         `json:"next_available_slot,omitempty"`
	Replayed          bool                      `json:"replayed,omitempty"`
}

func FromBookingResult(r *commands.BookingResult) *BookingResponse {
	resp := &BookingResponse{
		Reservation:  r.Reservation,
		Availability: r.Availability,
		Reasons:      r.Reasons,
		Replayed:     r.IsReplayed,
	}
	if r.Availability != nil {
		resp.NextAvailableSlot = r.Availability.NextAvailableSlot
	}
	return resp
}

type ReservationChangeResponse struct {
	Reservation *queries.ReservationView `json:"reservation"`
	Reasons     []string                 `json:"reasons,omitempty"`
}

func FromReservationChange(r *commands.ReservationChangeResult) *ReservationChangeResponse {
	return &ReservationChangeResponse{
		Reservation: r.Reservation,
		Reasons:     r.Reasons,
	}
}

type ReservationListResponse struct {
	Items      []*queries.ReservationView `json:"items"`
	NextCursor string                     `json:"next_cursor,omitempty"`
}

func FromReservationViews(views []*queries.ReservationView, cursor *queries.Cursor) *ReservationListResponse {
	if views == nil {
		views = []*queries.ReservationView{}
	}
	resp := &ReservationListResponse{Items: views}
	if cursor != nil {
		resp.NextCursor = cursor.After
	}
	return resp
}
