package auth

import (
	"net/http"
	"slices"
	"strings"

	"supplychainx.org/internal/domain"
)

const (
	admin     = domain.RoleAdmin
	gestAppro = domain.RoleGestionnaireApprovisionnement
	respAch   = domain.RoleResponsableAchats
	supLog    = domain.RoleSuperviseurLogistique
	chefProd  = domain.RoleChefProduction
	plan      = domain.RolePlanificateur
	supProd   = domain.RoleSuperviseurProduction
	gestComm  = domain.RoleGestionnaireCommercial
	respLog   = domain.RoleResponsableLogistique
	supLiv    = domain.RoleSuperviseurLivraisons
)

// Rule grants HTTP methods under a path prefix to a set of roles.
type Rule struct {
	Prefix  string
	Methods map[string][]domain.Role
}

func sameForAll(roles ...domain.Role) map[string][]domain.Role {
	return map[string][]domain.Role{
		http.MethodGet:    roles,
		http.MethodPost:   roles,
		http.MethodPut:    roles,
		http.MethodDelete: roles,
	}
}

// Matrix is the role matrix of the API. ADMIN is granted everywhere in
// addition to the listed roles.
var Matrix = []Rule{
	{Prefix: "/api/raw-materials", Methods: sameForAll(admin, gestAppro, respAch)},
	{Prefix: "/api/suppliers", Methods: sameForAll(admin, gestAppro, respAch)},
	{Prefix: "/api/supply-orders", Methods: map[string][]domain.Role{
		http.MethodGet:    {admin, gestAppro, respAch, chefProd},
		http.MethodPost:   {admin, respAch},
		http.MethodPut:    {admin, respAch, gestAppro},
		http.MethodDelete: {admin},
	}},
	{Prefix: "/api/products", Methods: map[string][]domain.Role{
		http.MethodGet:    {admin, chefProd, plan, supProd, gestComm},
		http.MethodPost:   {admin, chefProd},
		http.MethodPut:    {admin, chefProd},
		http.MethodDelete: {admin},
	}},
	{Prefix: "/api/production-orders", Methods: map[string][]domain.Role{
		http.MethodGet:    {admin, chefProd, plan, supProd},
		http.MethodPost:   {admin, plan, chefProd},
		http.MethodPut:    {admin, plan, supProd},
		http.MethodDelete: {admin},
	}},
	{Prefix: "/api/bom", Methods: sameForAll(admin, chefProd, plan)},
	{Prefix: "/api/planning", Methods: sameForAll(admin, chefProd, plan)},
	{Prefix: "/api/customers", Methods: map[string][]domain.Role{
		http.MethodGet:    {admin, gestComm, respLog, supLiv},
		http.MethodPost:   {admin, gestComm},
		http.MethodPut:    {admin, gestComm},
		http.MethodDelete: {admin},
	}},
	{Prefix: "/api/orders", Methods: map[string][]domain.Role{
		http.MethodGet:    {admin, gestComm, respLog, supLiv, plan},
		http.MethodPost:   {admin, gestComm},
		http.MethodPut:    {admin, gestComm, respLog},
		http.MethodDelete: {admin},
	}},
	{Prefix: "/api/deliveries", Methods: map[string][]domain.Role{
		http.MethodGet:    {admin, respLog, supLiv, supLog, gestComm},
		http.MethodPost:   {admin, respLog, supLog},
		http.MethodPut:    {admin, respLog, supLiv, supLog},
		http.MethodDelete: {admin},
	}},
	{Prefix: "/api/users", Methods: sameForAll(admin)},
}

// PublicPaths are served without a bearer token.
var PublicPaths = []string{
	"/",
	"/health",
	"/readyz",
	"/metrics",
	"/auth/login",
	"/auth/refresh",
	"/auth/logout",
}

// IsPublic reports whether path bypasses authentication.
func IsPublic(path string) bool {
	return slices.Contains(PublicPaths, path)
}

// Decision is the outcome of a policy lookup.
type Decision int

const (
	// NoRule means the path/method pair is not covered by the matrix; only
	// authentication applies.
	NoRule Decision = iota
	Allow
	Deny
)

// Authorize evaluates the matrix for role on method and path.
func Authorize(role domain.Role, method, path string) Decision {
	rule, ok := matchRule(path)
	if !ok {
		return NoRule
	}
	roles, ok := rule.Methods[method]
	if !ok {
		return NoRule
	}
	if role == domain.RoleAdmin || slices.Contains(roles, role) {
		return Allow
	}
	return Deny
}

func matchRule(path string) (Rule, bool) {
	for _, r := range Matrix {
		if path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r, true
		}
	}
	return Rule{}, false
}
