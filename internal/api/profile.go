package api

import (
	"net/http"

	"praktyka/internal/middleware"
	"praktyka/internal/models"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	NIP            string `json:"nip"`
	REGON          string `json:"regon"`
	City           string `json:"city"`
	Street         string `json:"street"`
	BuildingNumber string `json:"buildingNumber"`
	APIToken       string `json:"apiToken"`
	Domain         string `json:"domain"`
}

// handleUpdateProfile replaces the caller's profile fields. The
// credential is never touched here.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	user := &models.User{
		ID:             middleware.GetUserID(r.Context()),
		Email:          req.Email,
		Name:           req.Name,
		NIP:            req.NIP,
		REGON:          req.REGON,
		City:           req.City,
		Street:         req.Street,
		BuildingNumber: req.BuildingNumber,
		APIToken:       req.APIToken,
		Domain:         req.Domain,
	}
	if err := user.Validate(); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		s.respondError(w, r, err)
		return
	}

	updated, err := s.store.GetUserByID(r.Context(), user.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
