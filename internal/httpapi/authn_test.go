package httpapi

import (
	"net/http"
	"testing"

	"supplychainx.org/internal/domain"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer   abc.def ", want: "abc.def"},
		{header: "", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "Basic dXNlcjpwYXNz", wantErr: true},
		{header: "Bearerabc", wantErr: true},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %q", tc.header, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q, %v", tc.header, got, err)
		}
	}
}

func TestAccessTokenKeepsRoleUntilExpiry(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", domain.RoleAdmin)
	planner := api.login("planner@example.com", domain.RolePlanificateur)

	resp := api.get("/api/planning/calculate-time", nil, planner)
	expectError(t, resp, http.StatusBadRequest)

	users := decode[[]userResponse](t, api.get("/api/users", nil, admin))
	var plannerID int64
	for _, u := range users {
		if u.Email == "planner@example.com" {
			plannerID = u.ID
		}
	}
	resp = api.do(http.MethodPut, idPath("/api/users", plannerID)+"/role", map[string]any{"role": "GESTIONNAIRE_COMMERCIAL"}, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update role: unexpected status %d", resp.StatusCode)
	}

	// The access token is stateless and keeps its old role until it expires.
	resp = api.get("/api/planning/calculate-time", nil, planner)
	expectError(t, resp, http.StatusBadRequest)
}

func TestAccessDeniedByMethod(t *testing.T) {
	api := newTestAPI(t)
	commercial := api.login("sales@example.com", domain.RoleGestionnaireCommercial)

	body := expectError(t, api.do(http.MethodDelete, "/api/customers/1", nil, commercial), http.StatusForbidden)
	if body.Message == "" {
		t.Fatalf("expected message")
	}
	resp := api.get("/api/customers", nil, commercial)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
