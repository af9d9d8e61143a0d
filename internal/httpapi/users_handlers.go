package httpapi

import (
	"net/http"
	"strconv"

	"supplychainx.org/internal/auth"
	"supplychainx.org/internal/domain"
)

type createUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type userResponse struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: u.Role}
}

// handleUsers serves /api/users, /api/users/{id} and /api/users/{id}/role.
func (a *API) handleUsers(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			users, err := a.auth.ListUsers(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, mapAll(users, newUserResponse))
		case http.MethodPost:
			a.createUser(w, r)
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		u, err := a.auth.GetUser(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newUserResponse(u))
	case len(rest) == 2 && rest[1] == "role":
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		if r.Method != http.MethodPut {
			writeError(w, r, methodNotSupported(r))
			return
		}
		a.updateUserRole(w, r, id)
	default:
		writeError(w, r, notFound(r))
	}
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.auth.CreateUser(r.Context(), auth.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), "user.create", "user", u.ID, map[string]any{"email": u.Email, "role": u.Role})
	w.Header().Set("Location", "/api/users/"+strconv.FormatInt(u.ID, 10))
	writeJSON(w, http.StatusCreated, newUserResponse(u))
}

func (a *API) updateUserRole(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.auth.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), "user.role.update", "user", u.ID, map[string]any{"role": u.Role})
	writeJSON(w, http.StatusOK, newUserResponse(u))
}
