package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Booking statuses used by the backend.
const (
	BookingScheduled = "scheduled"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingNoShow    = "no-show"
)

// Booking is an appointment of a patient with a doctor in an office.
type Booking struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patientId"`
	DoctorID  string     `json:"doctorId"`
	OfficeID  string     `json:"officeId"`
	Status    string     `json:"status"`
	Reason    string     `json:"reason"`
	StartsAt  *time.Time `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

type bookingWire struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	OfficeID  string `json:"officeId"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	StartsAt  string `json:"startsAt"`
	EndsAt    string `json:"endsAt"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func mapBooking(raw json.RawMessage) (Booking, error) {
	var w bookingWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Booking{}, err
	}
	return Booking{
		ID:        w.ID,
		PatientID: w.PatientID,
		DoctorID:  w.DoctorID,
		OfficeID:  w.OfficeID,
		Status:    w.Status,
		Reason:    w.Reason,
		StartsAt:  parseDate(w.StartsAt),
		EndsAt:    parseDate(w.EndsAt),
		CreatedAt: parseDate(w.CreatedAt),
		UpdatedAt: parseDate(w.UpdatedAt),
	}, nil
}

// BookingInput is the create/update payload for bookings.
type BookingInput struct {
	PatientID *string `json:"patientId,omitempty"`
	DoctorID  *string `json:"doctorId,omitempty"`
	OfficeID  *string `json:"officeId,omitempty"`
	Status    *string `json:"status,omitempty"`
	Reason    *string `json:"reason,omitempty"`
	StartsAt  *string `json:"startsAt,omitempty"`
	EndsAt    *string `json:"endsAt,omitempty"`
}

// BookingsService operates on /bookings.
type BookingsService struct {
	c *Client
}

func (c *Client) Bookings() *BookingsService { return &BookingsService{c: c} }

// List fetches bookings. Filter keys include search, status, doctorId,
// patientId, officeId, dateFrom, dateTo, sortBy, sortOrder, page, limit.
func (s *BookingsService) List(ctx context.Context, f Filter) (*ListPage[Booking], error) {
	return listResource(ctx, s.c, "/bookings", f, "Error al obtener reservas", mapBooking)
}

func (s *BookingsService) Get(ctx context.Context, id string) (*Booking, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/bookings/"+id, nil, "Error al obtener la reserva", mapBooking)
}

func (s *BookingsService) Create(ctx context.Context, in BookingInput) (*Booking, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/bookings", in, "Error al crear la reserva", mapBooking)
}

func (s *BookingsService) Update(ctx context.Context, id string, in BookingInput) (*Booking, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/bookings/"+id, in, "Error al actualizar la reserva", mapBooking)
}

// Cancel marks a booking cancelled; the record is kept for history.
func (s *BookingsService) Cancel(ctx context.Context, id string) (*Booking, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/bookings/"+id+"/cancel", nil, "Error al cancelar la reserva", mapBooking)
}
