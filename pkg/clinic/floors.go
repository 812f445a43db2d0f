package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Floor is a building floor grouping offices.
type Floor struct {
	ID          string     `json:"id"`
	Number      int        `json:"number"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OfficeCount int        `json:"officeCount"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type floorWire struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OfficeCount int    `json:"officeCount"`
	IsActive    bool   `json:"isActive"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func mapFloor(raw json.RawMessage) (Floor, error) {
	var w floorWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Floor{}, err
	}
	return Floor{
		ID:          w.ID,
		Number:      w.Number,
		Name:        w.Name,
		Description: w.Description,
		OfficeCount: w.OfficeCount,
		IsActive:    w.IsActive,
		CreatedAt:   parseDate(w.CreatedAt),
		UpdatedAt:   parseDate(w.UpdatedAt),
	}, nil
}

// FloorInput is the create/update payload for floors.
type FloorInput struct {
	Number      *int    `json:"number,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// FloorsService operates on /floors.
type FloorsService struct {
	c *Client
}

func (c *Client) Floors() *FloorsService { return &FloorsService{c: c} }

func (s *FloorsService) List(ctx context.Context, f Filter) (*ListPage[Floor], error) {
	return listResource(ctx, s.c, "/floors", f, "Error al obtener pisos", mapFloor)
}

func (s *FloorsService) Get(ctx context.Context, id string) (*Floor, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/floors/"+id, nil, "Error al obtener el piso", mapFloor)
}

func (s *FloorsService) Create(ctx context.Context, in FloorInput) (*Floor, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/floors", in, "Error al crear el piso", mapFloor)
}

func (s *FloorsService) Update(ctx context.Context, id string, in FloorInput) (*Floor, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/floors/"+id, in, "Error al actualizar el piso", mapFloor)
}

func (s *FloorsService) Activate(ctx context.Context, id string) (*Floor, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/floors/"+id+"/activate", nil, "Error al activar el piso", mapFloor)
}

func (s *FloorsService) Deactivate(ctx context.Context, id string) (*Floor, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/floors/"+id+"/deactivate", nil, "Error al desactivar el piso", mapFloor)
}
