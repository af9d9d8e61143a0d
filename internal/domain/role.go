package domain

import (
	"fmt"
	"strings"
)

// Role is the single role carried by a user account.
type Role string

const (
	RoleAdmin                         Role = "ADMIN"
	RoleGestionnaireApprovisionnement Role = "GESTIONNAIRE_APPROVISIONNEMENT"
	RoleResponsableAchats             Role = "RESPONSABLE_ACHATS"
	RoleSuperviseurLogistique         Role = "SUPERVISEUR_LOGISTIQUE"
	RoleChefProduction                Role = "CHEF_PRODUCTION"
	RolePlanificateur                 Role = "PLANIFICATEUR"
	RoleSuperviseurProduction         Role = "SUPERVISEUR_PRODUCTION"
	RoleGestionnaireCommercial        Role = "GESTIONNAIRE_COMMERCIAL"
	RoleResponsableLogistique         Role = "RESPONSABLE_LOGISTIQUE"
	RoleSuperviseurLivraisons         Role = "SUPERVISEUR_LIVRAISONS"
)

// Roles lists every known role.
var Roles = []Role{
	RoleAdmin,
	RoleGestionnaireApprovisionnement,
	RoleResponsableAchats,
	RoleSuperviseurLogistique,
	RoleChefProduction,
	RolePlanificateur,
	RoleSuperviseurProduction,
	RoleGestionnaireCommercial,
	RoleResponsableLogistique,
	RoleSuperviseurLivraisons,
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole accepts the canonical literal, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
