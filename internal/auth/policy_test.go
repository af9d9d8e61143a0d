package auth

import (
	"net/http"
	"testing"

	"supplychainx.org/internal/domain"
)

func TestAuthorizeMatrix(t *testing.T) {
	cases := []struct {
		role   domain.Role
		method string
		path   string
		want   Decision
	}{
		{domain.RoleChefProduction, http.MethodGet, "/api/supply-orders", Allow},
		{domain.RoleChefProduction, http.MethodPost, "/api/supply-orders", Deny},
		{domain.RoleGestionnaireApprovisionnement, http.MethodPut, "/api/supply-orders/4", Allow},
		{domain.RoleResponsableAchats, http.MethodDelete, "/api/supply-orders/4", Deny},
		{domain.RoleAdmin, http.MethodDelete, "/api/supply-orders/4", Allow},
		{domain.RoleGestionnaireCommercial, http.MethodGet, "/api/products/search", Allow},
		{domain.RoleGestionnaireCommercial, http.MethodPost, "/api/products", Deny},
		{domain.RoleSuperviseurProduction, http.MethodPut, "/api/production-orders/1", Allow},
		{domain.RoleSuperviseurProduction, http.MethodPost, "/api/production-orders", Deny},
		{domain.RolePlanificateur, http.MethodGet, "/api/planning/check-availability", Allow},
		{domain.RoleSuperviseurProduction, http.MethodGet, "/api/planning/calculate-time", Deny},
		{domain.RolePlanificateur, http.MethodGet, "/api/orders/status/LIVREE", Allow},
		{domain.RolePlanificateur, http.MethodGet, "/api/customers", Deny},
		{domain.RoleResponsableLogistique, http.MethodPut, "/api/orders/2", Allow},
		{domain.RoleSuperviseurLivraisons, http.MethodPut, "/api/deliveries/2/status", Allow},
		{domain.RoleSuperviseurLivraisons, http.MethodPost, "/api/deliveries", Deny},
		{domain.RoleSuperviseurLogistique, http.MethodPost, "/api/deliveries/1/calculate-cost", Allow},
		{domain.RoleResponsableLogistique, http.MethodPost, "/api/users", Deny},
		{domain.RoleAdmin, http.MethodPut, "/api/users/3/role", Allow},
		{domain.RoleGestionnaireCommercial, http.MethodGet, "/api/unknown", NoRule},
		{domain.RoleGestionnaireCommercial, http.MethodGet, "/api/ordersx", NoRule},
		{domain.RoleGestionnaireCommercial, http.MethodPatch, "/api/orders/1", NoRule},
	}
	for _, tc := range cases {
		if got := Authorize(tc.role, tc.method, tc.path); got != tc.want {
			t.Fatalf("Authorize(%s, %s, %s)=%d, want %d", tc.role, tc.method, tc.path, got, tc.want)
		}
	}
}

func TestIsPublic(t *testing.T) {
	for _, p := range []string{"/", "/health", "/auth/login", "/auth/refresh", "/auth/logout", "/metrics"} {
		if !IsPublic(p) {
			t.Fatalf("%s should be public", p)
		}
	}
	for _, p := range []string{"/api/users", "/auth/other", "/healthz"} {
		if IsPublic(p) {
			t.Fatalf("%s should not be public", p)
		}
	}
}
