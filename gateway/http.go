package gateway

import (
	"chat-hub/auth"
	"chat-hub/errors"
	"chat-hub/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// API exposes the account subsystem over HTTP: registration, login, and
// profile updates. A profile update is what ultimately triggers the
// presence layer's username fan-out.
type API struct {
	log      *slog.Logger
	auth     services.IAuthService
	accounts services.IAccountService
}

func NewAPI(log *slog.Logger, authService services.IAuthService, accountService services.IAccountService) *API {
	return &API{log: log, auth: authService, accounts: accountService}
}

// Routes registers the HTTP handlers on the given mux alongside the
// websocket endpoint.
func (a *API) Routes(mux *http.ServeMux, ws *Gateway) {
	mux.HandleFunc("POST /register", a.handleRegister)
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("PUT /account", a.handleUpdateAccount)
	mux.HandleFunc("/ws", ws.ServeWS)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type accountUpdateRequest struct {
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	token, err := a.auth.Register(req.Email, req.Username, req.Password)
	if err != nil {
		a.log.Warn("registration rejected", "email", req.Email, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	token, err := a.auth.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, errors.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

// handleUpdateAccount authenticates via bearer token and applies the
// profile change. Persistence and the presence notification both happen
// inside the account service.
func (a *API) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	claims, err := bearerClaims(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req accountUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	user, err := a.accounts.UpdateProfile(claims.UserID, req.Username, req.DisplayName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
	})
}

// bearerClaims distinguishes a request that never presented credentials
// from one whose token failed validation.
func bearerClaims(r *http.Request) (*auth.SessionClaims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.ErrNotAuthenticated
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	return auth.ValidateToken(token)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
