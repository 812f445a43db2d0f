package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// MedicalHistory is a clinical entry on a patient's chart.
type MedicalHistory struct {
	ID         string     `json:"id"`
	PatientID  string     `json:"patientId"`
	DoctorID   string     `json:"doctorId"`
	Diagnosis  string     `json:"diagnosis"`
	Treatment  string     `json:"treatment"`
	Notes      string     `json:"notes"`
	RecordedAt *time.Time `json:"recordedAt"`
	CreatedAt  *time.Time `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

type historyWire struct {
	ID         string `json:"id"`
	PatientID  string `json:"patientId"`
	DoctorID   string `json:"doctorId"`
	Diagnosis  string `json:"diagnosis"`
	Treatment  string `json:"treatment"`
	Notes      string `json:"notes"`
	RecordedAt string `json:"recordedAt"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func mapHistory(raw json.RawMessage) (MedicalHistory, error) {
	var w historyWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return MedicalHistory{}, err
	}
	return MedicalHistory{
		ID:         w.ID,
		PatientID:  w.PatientID,
		DoctorID:   w.DoctorID,
		Diagnosis:  w.Diagnosis,
		Treatment:  w.Treatment,
		Notes:      w.Notes,
		RecordedAt: parseDate(w.RecordedAt),
		CreatedAt:  parseDate(w.CreatedAt),
		UpdatedAt:  parseDate(w.UpdatedAt),
	}, nil
}

// HistoryInput is the create/update payload for medical histories.
type HistoryInput struct {
	PatientID  *string `json:"patientId,omitempty"`
	DoctorID   *string `json:"doctorId,omitempty"`
	Diagnosis  *string `json:"diagnosis,omitempty"`
	Treatment  *string `json:"treatment,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	RecordedAt *string `json:"recordedAt,omitempty"`
}

// HistoriesService operates on /histories.
type HistoriesService struct {
	c *Client
}

func (c *Client) Histories() *HistoriesService { return &HistoriesService{c: c} }

// List fetches medical histories. Filter keys include search, patientId,
// doctorId, dateFrom, dateTo, sortBy, sortOrder, page, limit.
func (s *HistoriesService) List(ctx context.Context, f Filter) (*ListPage[MedicalHistory], error) {
	return listResource(ctx, s.c, "/histories", f, "Error al obtener historias clínicas", mapHistory)
}

func (s *HistoriesService) Get(ctx context.Context, id string) (*MedicalHistory, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/histories/"+id, nil, "Error al obtener la historia clínica", mapHistory)
}

func (s *HistoriesService) Create(ctx context.Context, in HistoryInput) (*MedicalHistory, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/histories", in, "Error al crear la historia clínica", mapHistory)
}

func (s *HistoriesService) Update(ctx context.Context, id string, in HistoryInput) (*MedicalHistory, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/histories/"+id, in, "Error al actualizar la historia clínica", mapHistory)
}
