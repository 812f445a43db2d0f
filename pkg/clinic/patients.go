package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Patient is a clinic patient record.
type Patient struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	FullName      string     `json:"fullName"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	DocumentID    string     `json:"documentId"`
	Gender        string     `json:"gender"`
	BirthDate     *time.Time `json:"birthDate"`
	Languages     []string   `json:"languages"`
	IsActive      bool       `json:"isActive"`
	LastVisitAt   *time.Time `json:"lastVisitAt"`
	CreatedAt     *time.Time `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt"`
}

// patientWire is the backend's JSON shape; date fields arrive as strings of
// varying formats and are coerced during mapping.
type patientWire struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	FullName    string   `json:"fullName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	DocumentID  string   `json:"documentId"`
	Gender      string   `json:"gender"`
	BirthDate   string   `json:"birthDate"`
	Languages   []string `json:"languages"`
	IsActive    bool     `json:"isActive"`
	LastVisitAt string   `json:"lastVisitAt"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func mapPatient(raw json.RawMessage) (Patient, error) {
	var w patientWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Patient{}, err
	}
	return Patient{
		ID:          w.ID,
		FirstName:   w.FirstName,
		LastName:    w.LastName,
		FullName:    composeFullName(w.FullName, w.FirstName, w.LastName),
		Email:       w.Email,
		Phone:       w.Phone,
		DocumentID:  w.DocumentID,
		Gender:      w.Gender,
		BirthDate:   parseDate(w.BirthDate),
		Languages:   orEmpty(w.Languages),
		IsActive:    w.IsActive,
		LastVisitAt: parseDate(w.LastVisitAt),
		CreatedAt:   parseDate(w.CreatedAt),
		UpdatedAt:   parseDate(w.UpdatedAt),
	}, nil
}

// PatientStats is the aggregate counts envelope of the patients resource.
type PatientStats struct {
	Total     int            `json:"total"`
	Active    int            `json:"active"`
	Inactive  int            `json:"inactive"`
	AgeRanges map[string]int `json:"ageRanges"`
}

// PatientInput is the create/update payload. Pointer fields are omitted when
// nil so partial updates only touch what the caller set.
type PatientInput struct {
	FirstName  *string  `json:"firstName,omitempty"`
	LastName   *string  `json:"lastName,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	DocumentID *string  `json:"documentId,omitempty"`
	Gender     *string  `json:"gender,omitempty"`
	BirthDate  *string  `json:"birthDate,omitempty"`
	Languages  []string `json:"languages,omitempty"`
}

// PatientsService operates on /patients.
type PatientsService struct {
	c *Client
}

// Patients returns the patients resource service.
func (c *Client) Patients() *PatientsService { return &PatientsService{c: c} }

// List fetches a filtered, paginated page of patients. Supported filter keys
// include search, isActive, minAge, maxAge, language, sortBy, sortOrder,
// page, and limit.
func (s *PatientsService) List(ctx context.Context, f Filter) (*ListPage[Patient], error) {
	return listResource(ctx, s.c, "/patients", f, "Error al obtener pacientes", mapPatient)
}

func (s *PatientsService) Get(ctx context.Context, id string) (*Patient, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/patients/"+id, nil, "Error al obtener el paciente", mapPatient)
}

func (s *PatientsService) Create(ctx context.Context, in PatientInput) (*Patient, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/patients", in, "Error al crear el paciente", mapPatient)
}

func (s *PatientsService) Update(ctx context.Context, id string, in PatientInput) (*Patient, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/patients/"+id, in, "Error al actualizar el paciente", mapPatient)
}

func (s *PatientsService) Activate(ctx context.Context, id string) (*Patient, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/patients/"+id+"/activate", nil, "Error al activar el paciente", mapPatient)
}

// Deactivate soft-deactivates a patient. The backend models this as DELETE on
// the patient resource; the record is retained and can be re-activated.
func (s *PatientsService) Deactivate(ctx context.Context, id string) (*DeleteResult, error) {
	return deleteResource(ctx, s.c, "/patients/"+id, "Error al desactivar el paciente")
}

func (s *PatientsService) Stats(ctx context.Context) (*PatientStats, error) {
	resp, err := s.c.do(ctx, http.MethodGet, "/patients/stats", nil, nil, "Error al obtener estadísticas de pacientes")
	if err != nil {
		return nil, err
	}
	raw, err := decodeEntityEnvelope(resp.body)
	if err != nil {
		return nil, err
	}
	var stats PatientStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, ErrUnexpectedResponse
	}
	if stats.AgeRanges == nil {
		stats.AgeRanges = map[string]int{}
	}
	return &stats, nil
}
