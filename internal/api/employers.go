package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"praktyka/internal/fakturownia"
	"praktyka/internal/middleware"
	"praktyka/internal/models"
)

type employerRequest struct {
	Name           string          `json:"name"`
	NIP            string          `json:"nip"`
	REGON          string          `json:"regon"`
	City           string          `json:"city"`
	Street         string          `json:"street"`
	BuildingNumber string          `json:"buildingNumber"`
	DefaultPercent decimal.Decimal `json:"defaultPercent"`
}

func (s *Server) handleListEmployers(w http.ResponseWriter, r *http.Request) {
	employers, err := s.store.ListEmployers(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, employers)
}

func (s *Server) handleCreateEmployer(w http.ResponseWriter, r *http.Request) {
	var req employerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	employer := &models.Employer{
		Name:           req.Name,
		NIP:            req.NIP,
		REGON:          req.REGON,
		City:           req.City,
		Street:         req.Street,
		BuildingNumber: req.BuildingNumber,
		DefaultPercent: req.DefaultPercent,
		UserID:         middleware.GetUserID(r.Context()),
	}
	if err := employer.Validate(); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.store.CreateEmployer(r.Context(), employer); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, employer)
}

func (s *Server) handleGetEmployer(w http.ResponseWriter, r *http.Request) {
	employer, err := s.store.GetEmployer(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, employer)
}

func (s *Server) handleGetEmployerByNIP(w http.ResponseWriter, r *http.Request) {
	employer, err := s.store.GetEmployerByNIP(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("nip"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, employer)
}

func (s *Server) handleUpdateEmployer(w http.ResponseWriter, r *http.Request) {
	var req employerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	userID := middleware.GetUserID(r.Context())

	// Fetch first so the external link survives a plain edit.
	existing, err := s.store.GetEmployer(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	existing.Name = req.Name
	existing.NIP = req.NIP
	existing.REGON = req.REGON
	existing.City = req.City
	existing.Street = req.Street
	existing.BuildingNumber = req.BuildingNumber
	existing.DefaultPercent = req.DefaultPercent
	if err := existing.Validate(); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.store.UpdateEmployer(r.Context(), existing); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteEmployer(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEmployer(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type syncRequest struct {
	Clients []fakturownia.ExternalClient `json:"clients"`
}

// handleSyncEmployers reconciles the external clients selected in the
// request body against the local employers. An empty selection falls
// back to the whole client book, fetched page by page.
func (s *Server) handleSyncEmployers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req syncRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	clients := req.Clients
	if len(clients) == 0 {
		all, err := s.sync.FetchAllClients(r.Context(), userID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		clients = all
	}

	results := s.sync.SyncEmployers(r.Context(), userID, clients)
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}
