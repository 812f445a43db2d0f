package authstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicdesk/clinicdesk/pkg/clinic"
)

func testSnapshot(token string) []byte {
	data, _ := json.Marshal(Snapshot{
		User:        clinic.User{ID: "u1", Email: "admin@clinic.test"},
		AccessToken: token,
		Remember:    true,
		SavedAt:     time.Now(),
	})
	return data
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestStore_LoadCleanWhenEmpty(t *testing.T) {
	store := New(NewMemoryStorage(), NewMemoryStorage())
	if err := store.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Authenticated() {
		t.Error("expected unauthenticated store")
	}
}

func TestStore_LoadPrefersSession(t *testing.T) {
	session, remembered := NewMemoryStorage(), NewMemoryStorage()
	session.Save(snapshotKey, testSnapshot("session-token"))
	remembered.Save(snapshotKey, testSnapshot("remembered-token"))

	store := New(session, remembered)
	if err := store.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Current().AccessToken; got != "session-token" {
		t.Errorf("expected session scope to win, got %q", got)
	}
}

// A fresh start has an empty session scope; the remembered snapshot must be
// copied back into it before hydrating.
func TestStore_LoadRestoresSessionFromRemembered(t *testing.T) {
	session, remembered := NewMemoryStorage(), NewMemoryStorage()
	remembered.Save(snapshotKey, testSnapshot("remembered-token"))

	store := New(session, remembered)
	if err := store.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Current().AccessToken; got != "remembered-token" {
		t.Errorf("expected remembered snapshot hydrated, got %q", got)
	}
	if _, err := session.Load(snapshotKey); err != nil {
		t.Errorf("expected snapshot copied into session scope: %v", err)
	}
}

func TestStore_LoadDiscardsCorruptSnapshot(t *testing.T) {
	session := NewMemoryStorage()
	session.Save(snapshotKey, []byte("{not json"))

	store := New(session, NewMemoryStorage())
	if err := store.Load(); err != nil {
		t.Fatalf("corrupt snapshot should not fail load: %v", err)
	}
	if store.Authenticated() {
		t.Error("expected corrupt snapshot discarded")
	}
	if _, err := session.Load(snapshotKey); err != ErrNotFound {
		t.Error("expected corrupt snapshot deleted from session scope")
	}
}

func TestStore_SetFromAuthResponse_RememberMirrors(t *testing.T) {
	session, remembered := NewMemoryStorage(), NewMemoryStorage()
	store := New(session, remembered)

	resp := &clinic.AuthResponse{
		User:        clinic.User{ID: "u1"},
		AccessToken: "tok",
	}
	if err := store.SetFromAuthResponse(resp, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := session.Load(snapshotKey); err != nil {
		t.Errorf("expected session persisted: %v", err)
	}
	if _, err := remembered.Load(snapshotKey); err != nil {
		t.Errorf("expected remembered mirror: %v", err)
	}
}

func TestStore_SetFromAuthResponse_NoRememberClearsMirror(t *testing.T) {
	session, remembered := NewMemoryStorage(), NewMemoryStorage()
	remembered.Save(snapshotKey, testSnapshot("old"))
	store := New(session, remembered)

	resp := &clinic.AuthResponse{User: clinic.User{ID: "u1"}, AccessToken: "tok"}
	if err := store.SetFromAuthResponse(resp, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := remembered.Load(snapshotKey); err != ErrNotFound {
		t.Error("expected stale remembered snapshot removed")
	}
	if _, err := session.Load(snapshotKey); err != nil {
		t.Errorf("expected session persisted regardless: %v", err)
	}
}

func TestStore_LogoutClearsBothScopes(t *testing.T) {
	session, remembered := NewMemoryStorage(), NewMemoryStorage()
	store := New(session, remembered)
	store.SetFromAuthResponse(&clinic.AuthResponse{AccessToken: "tok"}, true)

	if err := store.Logout(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Authenticated() {
		t.Error("expected logged out")
	}
	if _, err := session.Load(snapshotKey); err != ErrNotFound {
		t.Error("expected session scope cleared")
	}
	if _, err := remembered.Load(snapshotKey); err != ErrNotFound {
		t.Error("expected remembered scope cleared")
	}
}

func TestStore_TokenLifecycle(t *testing.T) {
	store := New(NewMemoryStorage(), NewMemoryStorage())

	// logged out: empty token, no error
	tok, err := store.Token()
	if err != nil || tok != "" {
		t.Errorf("expected empty token when logged out, got %q / %v", tok, err)
	}

	// valid JWT
	store.SetFromAuthResponse(&clinic.AuthResponse{
		AccessToken: signedToken(t, time.Now().Add(time.Hour)),
	}, false)
	if tok, err = store.Token(); err != nil || tok == "" {
		t.Errorf("expected valid token, got %q / %v", tok, err)
	}

	// expired JWT
	store.SetFromAuthResponse(&clinic.AuthResponse{
		AccessToken: signedToken(t, time.Now().Add(-time.Hour)),
	}, false)
	if _, err = store.Token(); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}

	// opaque token: no client-known expiry, passes through
	store.SetFromAuthResponse(&clinic.AuthResponse{AccessToken: "opaque-token"}, false)
	if tok, err = store.Token(); err != nil || tok != "opaque-token" {
		t.Errorf("expected opaque token passed through, got %q / %v", tok, err)
	}
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	store := New(NewMemoryStorage(), NewMemoryStorage())
	store.SetFromAuthResponse(&clinic.AuthResponse{
		User:        clinic.User{ID: "u1", FirstName: "Ana"},
		AccessToken: "tok",
	}, false)

	snap := store.Current()
	snap.User.FirstName = "changed"
	if store.Current().User.FirstName != "Ana" {
		t.Error("expected Current to return a copy, not the live snapshot")
	}
}

func TestStore_LoginAgainstBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"user":         map[string]any{"id": "u1", "email": "admin@clinic.test"},
			"accessToken":  "acc",
			"refreshToken": "ref",
		}})
	}))
	defer srv.Close()

	store := New(NewMemoryStorage(), NewMemoryStorage())
	c := clinic.New(srv.URL)
	if err := store.Login(context.Background(), c, "admin@clinic.test", "admin", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := store.Current()
	if snap == nil || snap.User.Email != "admin@clinic.test" || snap.AccessToken != "acc" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if !snap.Remember {
		t.Error("expected remember recorded")
	}
}

func TestFileStorage_RoundTrip(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fs.Load("auth"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on empty dir, got %v", err)
	}
	if err := fs.Save("auth", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := fs.Load("auth")
	if err != nil || string(data) != `{"x":1}` {
		t.Errorf("unexpected load result %q / %v", data, err)
	}
	if err := fs.Delete("auth"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// deleting a missing key is not an error
	if err := fs.Delete("auth"); err != nil {
		t.Errorf("expected tolerant delete, got %v", err)
	}
}
