package api

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"praktyka/internal/calculator"
	"praktyka/internal/middleware"
	"praktyka/internal/models"
)

// handleSummary serves the monthly earnings aggregation. Transactions
// and employers are independent reads, fetched concurrently.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	userID := middleware.GetUserID(r.Context())

	var (
		transactions []models.Transaction
		employers    []models.Employer
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(ctx, userID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		employers, err = s.store.ListEmployers(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondError(w, r, err)
		return
	}

	if filter.EmployerID != "" {
		// A single-employer summary only carries that employer's bucket.
		scoped := employers[:0:0]
		for _, e := range employers {
			if e.ID == filter.EmployerID {
				scoped = append(scoped, e)
			}
		}
		employers = scoped
	}

	respondJSON(w, http.StatusOK, calculator.Summarize(transactions, employers))
}
