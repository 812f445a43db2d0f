package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Role is an access-control role with its permission set.
type Role struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"isActive"`
	UserCount   int        `json:"userCount"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type roleWire struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"isActive"`
	UserCount   int      `json:"userCount"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func mapRole(raw json.RawMessage) (Role, error) {
	var w roleWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Role{}, err
	}
	return Role{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Permissions: orEmpty(w.Permissions),
		IsActive:    w.IsActive,
		UserCount:   w.UserCount,
		CreatedAt:   parseDate(w.CreatedAt),
		UpdatedAt:   parseDate(w.UpdatedAt),
	}, nil
}

// RoleInput is the create/update payload for roles.
type RoleInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// RolesService operates on /roles. Unlike patients, roles distinguish hard
// deletion from deactivation: Delete removes the role, Deactivate only
// disables it.
type RolesService struct {
	c *Client
}

func (c *Client) Roles() *RolesService { return &RolesService{c: c} }

func (s *RolesService) List(ctx context.Context, f Filter) (*ListPage[Role], error) {
	return listResource(ctx, s.c, "/roles", f, "Error al obtener roles", mapRole)
}

func (s *RolesService) Get(ctx context.Context, id string) (*Role, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/roles/"+id, nil, "Error al obtener el rol", mapRole)
}

func (s *RolesService) Create(ctx context.Context, in RoleInput) (*Role, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/roles", in, "Error al crear el rol", mapRole)
}

func (s *RolesService) Update(ctx context.Context, id string, in RoleInput) (*Role, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/roles/"+id, in, "Error al actualizar el rol", mapRole)
}

func (s *RolesService) Activate(ctx context.Context, id string) (*Role, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/roles/"+id+"/activate", nil, "Error al activar el rol", mapRole)
}

func (s *RolesService) Deactivate(ctx context.Context, id string) (*Role, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/roles/"+id+"/deactivate", nil, "Error al desactivar el rol", mapRole)
}

// Delete permanently removes a role.
func (s *RolesService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	return deleteResource(ctx, s.c, "/roles/"+id, "Error al eliminar el rol")
}
