package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Doctor is a clinic physician record.
type Doctor struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	FullName      string     `json:"fullName"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Specialty     string     `json:"specialty"`
	LicenseNumber string     `json:"licenseNumber"`
	Languages     []string   `json:"languages"`
	IsActive      bool       `json:"isActive"`
	HiredAt       *time.Time `json:"hiredAt"`
	CreatedAt     *time.Time `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt"`
}

type doctorWire struct {
	ID            string   `json:"id"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	FullName      string   `json:"fullName"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Specialty     string   `json:"specialty"`
	LicenseNumber string   `json:"licenseNumber"`
	Languages     []string `json:"languages"`
	IsActive      bool     `json:"isActive"`
	HiredAt       string   `json:"hiredAt"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func mapDoctor(raw json.RawMessage) (Doctor, error) {
	var w doctorWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Doctor{}, err
	}
	return Doctor{
		ID:            w.ID,
		FirstName:     w.FirstName,
		LastName:      w.LastName,
		FullName:      composeFullName(w.FullName, w.FirstName, w.LastName),
		Email:         w.Email,
		Phone:         w.Phone,
		Specialty:     w.Specialty,
		LicenseNumber: w.LicenseNumber,
		Languages:     orEmpty(w.Languages),
		IsActive:      w.IsActive,
		HiredAt:       parseDate(w.HiredAt),
		CreatedAt:     parseDate(w.CreatedAt),
		UpdatedAt:     parseDate(w.UpdatedAt),
	}, nil
}

// DoctorInput is the create/update payload for doctors.
type DoctorInput struct {
	FirstName     *string  `json:"firstName,omitempty"`
	LastName      *string  `json:"lastName,omitempty"`
	Email         *string  `json:"email,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	Specialty     *string  `json:"specialty,omitempty"`
	LicenseNumber *string  `json:"licenseNumber,omitempty"`
	Languages     []string `json:"languages,omitempty"`
}

// DoctorsService operates on /doctors.
type DoctorsService struct {
	c *Client
}

func (c *Client) Doctors() *DoctorsService { return &DoctorsService{c: c} }

// List fetches doctors. Filter keys include search, isActive, specialty,
// language, sortBy, sortOrder, page, limit.
func (s *DoctorsService) List(ctx context.Context, f Filter) (*ListPage[Doctor], error) {
	return listResource(ctx, s.c, "/doctors", f, "Error al obtener doctores", mapDoctor)
}

// Search is the debounced-search entry point: a free-text term over doctor
// names and specialties, returning a single page of matches.
func (s *DoctorsService) Search(ctx context.Context, term string) ([]Doctor, error) {
	page, err := s.List(ctx, Filter{FilterSearch: term, FilterLimit: 10})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (s *DoctorsService) Get(ctx context.Context, id string) (*Doctor, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/doctors/"+id, nil, "Error al obtener el doctor", mapDoctor)
}

func (s *DoctorsService) Create(ctx context.Context, in DoctorInput) (*Doctor, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/doctors", in, "Error al crear el doctor", mapDoctor)
}

func (s *DoctorsService) Update(ctx context.Context, id string, in DoctorInput) (*Doctor, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/doctors/"+id, in, "Error al actualizar el doctor", mapDoctor)
}

func (s *DoctorsService) Activate(ctx context.Context, id string) (*Doctor, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/doctors/"+id+"/activate", nil, "Error al activar el doctor", mapDoctor)
}

func (s *DoctorsService) Deactivate(ctx context.Context, id string) (*Doctor, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/doctors/"+id+"/deactivate", nil, "Error al desactivar el doctor", mapDoctor)
}
