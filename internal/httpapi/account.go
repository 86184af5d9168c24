package httpapi

import (
	"net/http"

	"github.com/dwikikusuma/storefront/internal/account/domain"
)

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.accounts.Profile(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.accounts.UpdateProfile(r.Context(), bearerToken(r), upd)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	s, err := h.accounts.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	s, err := h.accounts.Register(r.Context(), creds.Name, creds.Email, creds.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}
