package httpapi

import (
	"net/http"
	"strings"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/auth"
	"supplychainx.org/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	TokenType    string      `json:"tokenType"`
	UserID       int64       `json:"userId"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
}

func newTokenResponse(p auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		UserID:       p.UserID,
		Email:        p.Email,
		Role:         p.Role,
	}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, methodNotSupported(r))
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var v apperr.Violations
	v.Check(strings.TrimSpace(req.Email) != "", "email", "is required")
	v.Check(req.Password != "", "password", "is required")
	if err := v.Err(); err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.audit(r.Context(), "auth.login.failed", "user", 0, map[string]any{"email": strings.ToLower(strings.TrimSpace(req.Email))})
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), "auth.login", "user", pair.UserID, map[string]any{"role": pair.Role})
	writeJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, methodNotSupported(r))
		return
	}
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, r, apperr.Validationf("refreshToken: is required"))
		return
	}
	pair, err := a.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		a.audit(r.Context(), "auth.refresh.failed", "refresh_token", 0, nil)
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), "auth.refresh", "user", pair.UserID, nil)
	writeJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, methodNotSupported(r))
		return
	}
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, r, apperr.Validationf("refreshToken: is required"))
		return
	}
	if err := a.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), "auth.logout", "refresh_token", 0, nil)
	w.WriteHeader(http.StatusNoContent)
}
