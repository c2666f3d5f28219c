package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"praktyka/internal/fakturownia"
	"praktyka/internal/models"
	"praktyka/internal/storage"
)

// Sync statuses, one per incoming external client.
const (
	SyncCreated = "created"
	SyncUpdated = "updated"
	SyncFailed  = "failed"
)

// SyncResult reports what happened to one external client during a
// sync, in the order the clients were submitted.
type SyncResult struct {
	NIP    string `json:"nip"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ClientLister is the slice of the Fakturownia client the sync flow
// needs to pull the caller's client book.
type ClientLister interface {
	ListClients(ctx context.Context, page int) ([]fakturownia.ExternalClient, error)
}

// ClientListerFactory builds a ClientLister for one user's credentials.
type ClientListerFactory func(domain, apiToken string) ClientLister

// DefaultClientListerFactory builds real Fakturownia clients with the
// given per-call timeout.
func DefaultClientListerFactory(timeout time.Duration) ClientListerFactory {
	return func(domain, apiToken string) ClientLister {
		return fakturownia.New(fakturownia.Config{
			Domain:   domain,
			APIToken: apiToken,
			Timeout:  timeout,
		})
	}
}

// SyncService reconciles the local employer list against the client
// book of the external invoicing service. Tax number is the match key.
type SyncService struct {
	store     storage.Store
	newClient ClientListerFactory
	logger    *slog.Logger
}

// NewSyncService creates the reconciliation service.
func NewSyncService(store storage.Store, factory ClientListerFactory, logger *slog.Logger) *SyncService {
	return &SyncService{store: store, newClient: factory, logger: logger}
}

// FetchClients pulls one page of the caller's external client book.
func (s *SyncService) FetchClients(ctx context.Context, userID string, page int) ([]fakturownia.ExternalClient, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !user.HasInvoicingCredentials() {
		return nil, ErrNoCredentials
	}
	clients, err := s.newClient(user.Domain, user.APIToken).ListClients(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternal, err)
	}
	return clients, nil
}

// maxClientPages caps the pagination loop so a misbehaving external
// service cannot hold a request forever.
const maxClientPages = 50

// FetchAllClients pulls the caller's external client book page by
// page until an empty page comes back.
func (s *SyncService) FetchAllClients(ctx context.Context, userID string) ([]fakturownia.ExternalClient, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !user.HasInvoicingCredentials() {
		return nil, ErrNoCredentials
	}

	client := s.newClient(user.Domain, user.APIToken)
	var all []fakturownia.ExternalClient
	for page := 1; page <= maxClientPages; page++ {
		batch, err := client.ListClients(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExternal, err)
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all, nil
}

// SyncEmployers applies a batch of external clients to the caller's
// employers. Matching employers get refreshed contact data and the
// external id attached, keeping their percent untouched. Unmatched
// clients become new employers at 100 percent. A client whose merged
// record would not validate is reported as failed and the stored
// employer stays as it was. A failing entry never stalls the rest of
// the batch.
func (s *SyncService) SyncEmployers(ctx context.Context, userID string, clients []fakturownia.ExternalClient) []SyncResult {
	results := make([]SyncResult, 0, len(clients))
	for _, client := range clients {
		result := SyncResult{NIP: client.TaxNo, Name: client.Name}
		status, err := s.syncOne(ctx, userID, client)
		result.Status = status
		if err != nil {
			result.Error = err.Error()
			s.logger.Warn("Employer sync entry failed",
				"user_id", userID,
				"nip", client.TaxNo,
				"error", err)
		}
		results = append(results, result)
	}
	return results
}

func (s *SyncService) syncOne(ctx context.Context, userID string, client fakturownia.ExternalClient) (string, error) {
	if client.TaxNo == "" {
		return SyncFailed, fmt.Errorf("client %q has no tax number", client.Name)
	}

	existing, err := s.store.GetEmployerByNIP(ctx, userID, client.TaxNo)
	switch {
	case err == nil:
		existing.Name = client.Name
		existing.City = client.City
		existing.Street = client.Street
		existing.BuildingNumber = client.BuildingNumber
		existing.FakturowniaID = client.ID.String()
		if errs := existing.Validate(); errs != nil {
			return SyncFailed, errs
		}
		if err := s.store.UpdateEmployer(ctx, existing); err != nil {
			return SyncFailed, fmt.Errorf("update employer: %w", err)
		}
		return SyncUpdated, nil

	case errors.Is(err, storage.ErrNotFound):
		employer := &models.Employer{
			Name:           client.Name,
			NIP:            client.TaxNo,
			City:           client.City,
			Street:         client.Street,
			BuildingNumber: client.BuildingNumber,
			DefaultPercent: decimal.NewFromInt(100),
			FakturowniaID:  client.ID.String(),
			UserID:         userID,
		}
		if errs := employer.Validate(); errs != nil {
			return SyncFailed, errs
		}
		if err := s.store.CreateEmployer(ctx, employer); err != nil {
			return SyncFailed, fmt.Errorf("create employer: %w", err)
		}
		return SyncCreated, nil

	default:
		return SyncFailed, fmt.Errorf("look up employer: %w", err)
	}
}
