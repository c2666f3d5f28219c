package api

import (
	"net/http"
	"strconv"

	"praktyka/internal/middleware"
	"praktyka/internal/service"
)

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.ListInvoices(r.Context(), middleware.GetUserID(r.Context()), "")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleListEmployerInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.ListInvoices(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("employerId"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

// handleIssueInvoice runs the issuance flow. The invoice record only
// exists locally once the external service accepted it.
func (s *Server) handleIssueInvoice(w http.ResponseWriter, r *http.Request) {
	var req service.IssueInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	invoice, err := s.invoices.IssueInvoice(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, invoice)
}

// handleListClients proxies one page of the caller's external client
// book, for picking a client to link before a sync.
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			page = parsed
		}
	}

	clients, err := s.sync.FetchClients(r.Context(), middleware.GetUserID(r.Context()), page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}
