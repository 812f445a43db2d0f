package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Office is a consultation room on a floor.
type Office struct {
	ID        string     `json:"id"`
	Number    string     `json:"number"`
	Name      string     `json:"name"`
	FloorID   string     `json:"floorId"`
	Capacity  int        `json:"capacity"`
	Equipment []string   `json:"equipment"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

type officeWire struct {
	ID        string   `json:"id"`
	Number    string   `json:"number"`
	Name      string   `json:"name"`
	FloorID   string   `json:"floorId"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
	IsActive  bool     `json:"isActive"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

func mapOffice(raw json.RawMessage) (Office, error) {
	var w officeWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Office{}, err
	}
	return Office{
		ID:        w.ID,
		Number:    w.Number,
		Name:      w.Name,
		FloorID:   w.FloorID,
		Capacity:  w.Capacity,
		Equipment: orEmpty(w.Equipment),
		IsActive:  w.IsActive,
		CreatedAt: parseDate(w.CreatedAt),
		UpdatedAt: parseDate(w.UpdatedAt),
	}, nil
}

// OfficeInput is the create/update payload for offices.
type OfficeInput struct {
	Number    *string  `json:"number,omitempty"`
	Name      *string  `json:"name,omitempty"`
	FloorID   *string  `json:"floorId,omitempty"`
	Capacity  *int     `json:"capacity,omitempty"`
	Equipment []string `json:"equipment,omitempty"`
}

// OfficesService operates on /offices.
type OfficesService struct {
	c *Client
}

func (c *Client) Offices() *OfficesService { return &OfficesService{c: c} }

// List fetches offices. Filter keys include search, isActive, floorId,
// sortBy, sortOrder, page, limit.
func (s *OfficesService) List(ctx context.Context, f Filter) (*ListPage[Office], error) {
	return listResource(ctx, s.c, "/offices", f, "Error al obtener consultorios", mapOffice)
}

func (s *OfficesService) Get(ctx context.Context, id string) (*Office, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/offices/"+id, nil, "Error al obtener el consultorio", mapOffice)
}

func (s *OfficesService) Create(ctx context.Context, in OfficeInput) (*Office, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/offices", in, "Error al crear el consultorio", mapOffice)
}

func (s *OfficesService) Update(ctx context.Context, id string, in OfficeInput) (*Office, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/offices/"+id, in, "Error al actualizar el consultorio", mapOffice)
}

func (s *OfficesService) Activate(ctx context.Context, id string) (*Office, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/offices/"+id+"/activate", nil, "Error al activar el consultorio", mapOffice)
}

func (s *OfficesService) Deactivate(ctx context.Context, id string) (*Office, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/offices/"+id+"/deactivate", nil, "Error al desactivar el consultorio", mapOffice)
}
