package api

import (
	"net/http"

	"praktyka/internal/models"
)

type registerRequest struct {
	Email          string `json:"email"`
	PasswordDigest string `json:"passwordHash"`
	Name           string `json:"name"`
	NIP            string `json:"nip"`
	REGON          string `json:"regon"`
	City           string `json:"city"`
	Street         string `json:"street"`
	BuildingNumber string `json:"buildingNumber"`
}

type loginRequest struct {
	Email          string `json:"email"`
	PasswordDigest string `json:"passwordHash"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	user := &models.User{
		Email:          req.Email,
		Name:           req.Name,
		NIP:            req.NIP,
		REGON:          req.REGON,
		City:           req.City,
		Street:         req.Street,
		BuildingNumber: req.BuildingNumber,
	}
	if err := user.Validate(); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.authenticator.Register(r.Context(), user, req.PasswordDigest)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.jwt.Generate(created)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info("User registered", "user_id", created.ID, "email", created.Email)
	respondJSON(w, http.StatusCreated, tokenResponse{Token: token, User: created})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.PasswordDigest)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}
