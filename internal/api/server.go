// Package api exposes the HTTP surface: authentication, CRUD over the
// owner-scoped records, the monthly summary and the external
// invoicing flows.
package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"praktyka/internal/auth"
	"praktyka/internal/middleware"
	"praktyka/internal/service"
	"praktyka/internal/storage"
)

// Server holds the dependencies of every handler.
type Server struct {
	store         storage.Store
	authenticator *auth.PasswordAuthenticator
	jwt           *auth.JWTManager
	invoices      *service.InvoiceService
	sync          *service.SyncService
	logger        *slog.Logger
	development   bool
}

// Options configures a Server.
type Options struct {
	Store         storage.Store
	Authenticator *auth.PasswordAuthenticator
	JWT           *auth.JWTManager
	Invoices      *service.InvoiceService
	Sync          *service.SyncService
	Logger        *slog.Logger
	Development   bool
}

// NewServer wires the handlers to their dependencies.
func NewServer(opts Options) *Server {
	return &Server{
		store:         opts.Store,
		authenticator: opts.Authenticator,
		jwt:           opts.JWT,
		invoices:      opts.Invoices,
		sync:          opts.Sync,
		logger:        opts.Logger,
		development:   opts.Development,
	}
}

// Handler builds the full routing table wrapped in the logging and
// metrics middleware. Everything under /api except the auth endpoints
// requires a bearer token.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	requireAuth := middleware.RequireAuth(s.jwt)
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(h))
	}

	protected("GET /api/profile", s.handleGetProfile)
	protected("PUT /api/profile", s.handleUpdateProfile)

	protected("GET /api/employers", s.handleListEmployers)
	protected("POST /api/employers", s.handleCreateEmployer)
	protected("GET /api/employers/{id}", s.handleGetEmployer)
	protected("PUT /api/employers/{id}", s.handleUpdateEmployer)
	protected("DELETE /api/employers/{id}", s.handleDeleteEmployer)
	protected("GET /api/employers/nip/{nip}", s.handleGetEmployerByNIP)
	protected("POST /api/employers/sync", s.handleSyncEmployers)

	protected("GET /api/transactions", s.handleListTransactions)
	protected("POST /api/transactions", s.handleCreateTransaction)
	protected("GET /api/transactions/{id}", s.handleGetTransaction)
	protected("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	protected("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	protected("GET /api/products", s.handleListProducts)
	protected("POST /api/products", s.handleCreateProduct)
	protected("DELETE /api/products/{id}", s.handleDeleteProduct)

	protected("GET /api/invoices", s.handleListInvoices)
	protected("GET /api/invoices/employer/{employerId}", s.handleListEmployerInvoices)
	protected("POST /api/invoices/issue", s.handleIssueInvoice)

	protected("GET /api/summary", s.handleSummary)
	protected("GET /api/fakturownia/clients", s.handleListClients)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = middleware.Metrics(mux)(handler)
	handler = middleware.Logging(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
