package clinic

import (
	"context"
	"encoding/json"
	"net/http"
)

// AuthResponse is the payload returned by login and refresh.
type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authWire struct {
	User         json.RawMessage `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

func mapAuthResponse(raw json.RawMessage) (AuthResponse, error) {
	var w authWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return AuthResponse{}, err
	}
	if w.AccessToken == "" {
		return AuthResponse{}, ErrUnexpectedResponse
	}
	out := AuthResponse{AccessToken: w.AccessToken, RefreshToken: w.RefreshToken}
	if isJSONObject(w.User) {
		u, err := mapUser(w.User)
		if err != nil {
			return AuthResponse{}, err
		}
		out.User = u
	}
	return out, nil
}

// LoginRequest is the credentials payload for Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService operates on /auth.
type AuthService struct {
	c *Client
}

func (c *Client) Auth() *AuthService { return &AuthService{c: c} }

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/auth/login", req, "Credenciales inválidas", mapAuthResponse)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	body := map[string]string{"refreshToken": refreshToken}
	return requestEntity(ctx, s.c, http.MethodPost, "/auth/refresh", body, "Error al renovar la sesión", mapAuthResponse)
}
