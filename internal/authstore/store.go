package authstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicdesk/clinicdesk/pkg/clinic"
)

// snapshotKey is the storage key the session is persisted under.
const snapshotKey = "auth"

// ErrNotAuthenticated is returned when a token is requested with no session.
var ErrNotAuthenticated = errors.New("authstore: not authenticated")

// ErrTokenExpired is returned when the stored access token has expired.
var ErrTokenExpired = errors.New("authstore: access token expired")

// Snapshot is the persisted session state.
type Snapshot struct {
	User         clinic.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	Remember     bool        `json:"remember"`
	SavedAt      time.Time   `json:"savedAt"`
}

// Store owns the current session. It is written only through Login,
// SetFromAuthResponse, and Logout; everything else reads.
type Store struct {
	mu         sync.RWMutex
	session    Storage
	remembered Storage
	snap       *Snapshot
}

// New creates a Store over the two storage scopes. remembered may equal
// session when no durable scope is wanted.
func New(session, remembered Storage) *Store {
	return &Store{session: session, remembered: remembered}
}

// Load hydrates the store. The session scope wins; when it is empty but a
// remembered snapshot exists, that snapshot is first copied into the session
// scope and then hydrated. A store with no snapshot anywhere loads clean.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.session.Load(snapshotKey)
	if errors.Is(err, ErrNotFound) {
		data, err = s.remembered.Load(snapshotKey)
		if errors.Is(err, ErrNotFound) {
			s.snap = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("load remembered session: %w", err)
		}
		if err := s.session.Save(snapshotKey, data); err != nil {
			return fmt.Errorf("restore session scope: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt snapshot is discarded rather than wedging startup.
		s.snap = nil
		_ = s.session.Delete(snapshotKey)
		return nil
	}
	s.snap = &snap
	return nil
}

// Login authenticates against the backend and persists the session.
func (s *Store) Login(ctx context.Context, c *clinic.Client, email, password string, remember bool) error {
	resp, err := c.Auth().Login(ctx, clinic.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	return s.SetFromAuthResponse(resp, remember)
}

// SetFromAuthResponse installs and persists a fresh auth payload. The
// snapshot always lands in the session scope and is mirrored to the
// remembered scope only when remember is set.
func (s *Store) SetFromAuthResponse(resp *clinic.AuthResponse, remember bool) error {
	snap := &Snapshot{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Remember:     remember,
		SavedAt:      time.Now(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Save(snapshotKey, data); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if remember {
		if err := s.remembered.Save(snapshotKey, data); err != nil {
			return fmt.Errorf("persist remembered session: %w", err)
		}
	} else {
		_ = s.remembered.Delete(snapshotKey)
	}
	s.snap = snap
	return nil
}

// Logout clears the in-memory session and both storage scopes.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	if err := s.session.Delete(snapshotKey); err != nil {
		return err
	}
	return s.remembered.Delete(snapshotKey)
}

// Current returns a copy of the active snapshot, or nil when logged out.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil
	}
	cp := *s.snap
	return &cp
}

// Authenticated reports whether a session is loaded.
func (s *Store) Authenticated() bool {
	return s.Current() != nil
}

// Token implements clinic.TokenSource. Logged-out stores yield an empty
// token so requests simply go out unauthenticated; expired access tokens are
// rejected so a request never carries credentials the backend will bounce.
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return "", nil
	}
	if exp := tokenExpiry(s.snap.AccessToken); exp != nil && time.Now().After(*exp) {
		return "", ErrTokenExpired
	}
	return s.snap.AccessToken, nil
}

// tokenExpiry extracts the exp claim of a JWT without verifying its
// signature; verification belongs to the backend. Tokens that do not parse
// as JWTs (opaque tokens) have no client-known expiry.
func tokenExpiry(token string) *time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return &exp.Time
}
