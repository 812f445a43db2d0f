package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// User is a dashboard operator account.
type User struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	RoleID      string     `json:"roleId"`
	RoleName    string     `json:"roleName"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type userWire struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	RoleID      string `json:"roleId"`
	RoleName    string `json:"roleName"`
	IsActive    bool   `json:"isActive"`
	LastLoginAt string `json:"lastLoginAt"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func mapUser(raw json.RawMessage) (User, error) {
	var w userWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return User{}, err
	}
	return User{
		ID:          w.ID,
		FirstName:   w.FirstName,
		LastName:    w.LastName,
		FullName:    composeFullName(w.FullName, w.FirstName, w.LastName),
		Email:       w.Email,
		RoleID:      w.RoleID,
		RoleName:    w.RoleName,
		IsActive:    w.IsActive,
		LastLoginAt: parseDate(w.LastLoginAt),
		CreatedAt:   parseDate(w.CreatedAt),
		UpdatedAt:   parseDate(w.UpdatedAt),
	}, nil
}

// UserInput is the create/update payload for users. Password is only
// honored on create.
type UserInput struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	RoleID    *string `json:"roleId,omitempty"`
}

// UsersService operates on /users.
type UsersService struct {
	c *Client
}

func (c *Client) Users() *UsersService { return &UsersService{c: c} }

func (s *UsersService) List(ctx context.Context, f Filter) (*ListPage[User], error) {
	return listResource(ctx, s.c, "/users", f, "Error al obtener usuarios", mapUser)
}

func (s *UsersService) Get(ctx context.Context, id string) (*User, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/users/"+id, nil, "Error al obtener el usuario", mapUser)
}

func (s *UsersService) Create(ctx context.Context, in UserInput) (*User, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/users", in, "Error al crear el usuario", mapUser)
}

func (s *UsersService) Update(ctx context.Context, id string, in UserInput) (*User, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/users/"+id, in, "Error al actualizar el usuario", mapUser)
}

func (s *UsersService) Activate(ctx context.Context, id string) (*User, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/users/"+id+"/activate", nil, "Error al activar el usuario", mapUser)
}

func (s *UsersService) Deactivate(ctx context.Context, id string) (*User, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/users/"+id+"/deactivate", nil, "Error al desactivar el usuario", mapUser)
}
