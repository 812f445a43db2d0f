package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, opts...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestClient_ListSendsFiltersAsQuery(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []any{}})
	})

	_, err := c.Patients().List(context.Background(), Filter{
		FilterSearch:   "garcia",
		FilterIsActive: true,
		FilterPage:     2,
		FilterLimit:    20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"search": "garcia", "isActive": "true", "page": "2", "limit": "20"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s: expected %q, got %q", k, v, gotQuery[k])
		}
	}
}

func TestClient_BearerTokenAttached(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, []any{})
	}, WithTokenSource(StaticToken("tok-123")))

	if _, err := c.Doctors().List(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestClient_ErrorMessageFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"message": "El nombre es requerido"})
	})

	name := "x"
	_, err := c.Roles().Create(context.Background(), RoleInput{Name: &name})
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "El nombre es requerido" {
		t.Errorf("expected backend message, got %q", apiErr.Message)
	}
}

func TestClient_FallbackMessageWhenBodyUnusable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	})

	_, err := c.Patients().List(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Error al obtener pacientes" {
		t.Errorf("expected fallback message, got %q", err.Error())
	}
}

func TestClient_TransportFailureUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	c := New(srv.URL)

	_, err := c.Doctors().List(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Error al obtener doctores" {
		t.Errorf("expected fallback message, got %q", err.Error())
	}
}

func TestClient_MalformedDatesMapToNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"id":        "p1",
			"firstName": "Ana",
			"lastName":  "García",
			"birthDate": "not-a-date",
			"createdAt": "2024-03-15T10:00:00Z",
		}})
	})

	p, err := c.Patients().Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.BirthDate != nil {
		t.Errorf("expected malformed birthDate to map to nil, got %v", p.BirthDate)
	}
	if p.CreatedAt == nil {
		t.Error("expected valid createdAt to parse")
	}
	if p.FullName != "Ana García" {
		t.Errorf("expected derived full name, got %q", p.FullName)
	}
	if p.Languages == nil {
		t.Error("expected languages to be an empty slice, not nil")
	}
}

func TestClient_DateOnlyFormatParses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"id": "p1", "birthDate": "1988-06-02",
		}})
	})
	p, err := c.Patients().Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.BirthDate == nil {
		t.Fatal("expected date-only birthDate to parse")
	}
	if y := p.BirthDate.Year(); y != 1988 {
		t.Errorf("expected year 1988, got %d", y)
	}
}

func TestClient_ActivateIsIdempotentFromCallerView(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"id": "d1", "isActive": true,
		}})
	})

	for i := 0; i < 2; i++ {
		d, err := c.Doctors().Activate(context.Background(), "d1")
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if !d.IsActive {
			t.Errorf("call %d: expected active doctor", i)
		}
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestClient_DeleteToleratesTextBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Rol eliminado correctamente"))
	})

	res, err := c.Roles().Delete(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Error("expected success")
	}
	if res.Message != "Rol eliminado correctamente" {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestClient_PatientDeactivateUsesDelete(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "message": "Paciente desactivado correctamente"})
	})

	res, err := c.Patients().Deactivate(context.Background(), "p9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/patients/p9" {
		t.Errorf("expected DELETE /patients/p9, got %s %s", gotMethod, gotPath)
	}
	if !res.Success {
		t.Error("expected success result")
	}
}

func TestClient_ListDropsUnmappableRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"ok"},"garbage",{"id":"ok2"}]}`))
	})

	page, err := c.Patients().List(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 mappable rows, got %d", len(page.Data))
	}
}

func TestClient_StatsDecoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/patients/stats" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"total": 100, "active": 90, "inactive": 10,
			"ageRanges": map[string]int{"18-35": 40},
		}})
	})

	stats, err := c.Patients().Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 100 || stats.Active != 90 || stats.Inactive != 10 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.AgeRanges["18-35"] != 40 {
		t.Errorf("unexpected age ranges: %v", stats.AgeRanges)
	}
}

func TestClient_LoginMapsAuthResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"user":         map[string]any{"id": "u1", "email": "admin@clinic.test"},
			"accessToken":  "acc",
			"refreshToken": "ref",
		}})
	})

	resp, err := c.Auth().Login(context.Background(), LoginRequest{Email: "admin@clinic.test", Password: "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User.Email != "admin@clinic.test" {
		t.Errorf("unexpected user %+v", resp.User)
	}
	if resp.AccessToken != "acc" || resp.RefreshToken != "ref" {
		t.Errorf("unexpected tokens %q %q", resp.AccessToken, resp.RefreshToken)
	}
}

func TestClient_LoginFailureMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "Credenciales inválidas"})
	})

	_, err := c.Auth().Login(context.Background(), LoginRequest{Email: "x@y.z", Password: "bad"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Credenciales inválidas" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
