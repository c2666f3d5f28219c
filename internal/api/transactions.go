package api

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"praktyka/internal/middleware"
	"praktyka/internal/models"
	"praktyka/internal/storage"
)

type transactionRequest struct {
	Date        models.Date      `json:"date"`
	Amount      decimal.Decimal  `json:"amount"`
	Percent     *decimal.Decimal `json:"percent"`
	PatientName string           `json:"patientName"`
	Description string           `json:"description"`
	EmployerID  string           `json:"employerId"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), middleware.GetUserID(r.Context()), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

// handleCreateTransaction records a visit. A missing percent falls
// back to the employer's default cut.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	userID := middleware.GetUserID(r.Context())

	tx := &models.Transaction{
		Date:        req.Date,
		Amount:      req.Amount,
		PatientName: req.PatientName,
		Description: req.Description,
		EmployerID:  req.EmployerID,
		UserID:      userID,
	}

	if req.EmployerID != "" {
		// The employer must exist and belong to the caller; its name
		// rides along on the response, its default percent fills a
		// missing one.
		employer, err := s.store.GetEmployer(r.Context(), userID, req.EmployerID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		tx.EmployerName = employer.Name
		if req.Percent == nil {
			tx.Percent = employer.DefaultPercent
		}
	}
	if req.Percent != nil {
		tx.Percent = *req.Percent
	}

	if err := tx.Validate(); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.store.CreateTransaction(r.Context(), tx); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.store.GetTransaction(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	userID := middleware.GetUserID(r.Context())

	// The employer reference is fixed at creation, so updates start
	// from the stored row.
	existing, err := s.store.GetTransaction(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	existing.Date = req.Date
	existing.Amount = req.Amount
	if req.Percent != nil {
		existing.Percent = *req.Percent
	}
	existing.PatientName = req.PatientName
	existing.Description = req.Description
	if err := existing.Validate(); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.store.UpdateTransaction(r.Context(), existing); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// transactionFilterFromQuery reads the month, year and employerId
// query parameters. Month and year only filter together.
func transactionFilterFromQuery(r *http.Request) (storage.TransactionFilter, error) {
	filter := storage.TransactionFilter{EmployerID: r.URL.Query().Get("employerId")}

	var errs models.ValidationErrors
	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			errs = append(errs, models.FieldError{Field: "month", Message: "month must be a number from 1 to 12"})
		} else {
			filter.Month = month
		}
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			errs = append(errs, models.FieldError{Field: "year", Message: "year must be a positive number"})
		} else {
			filter.Year = year
		}
	}
	if filter.Month != 0 && filter.Year == 0 {
		errs = append(errs, models.FieldError{Field: "year", Message: "year is required with month"})
	}

	if len(errs) > 0 {
		return storage.TransactionFilter{}, errs
	}
	return filter, nil
}
