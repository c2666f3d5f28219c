package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"praktyka/internal/events"
	"praktyka/internal/fakturownia"
	"praktyka/internal/models"
	"praktyka/internal/storage"
	"praktyka/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "praktyka-service-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func seedUser(t *testing.T, store storage.Store, withCredentials bool) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "jan@example.com",
		PasswordHash: "hash",
		Name:         "Jan Kowalski",
		NIP:          "1234567890",
		REGON:        "123456789",
		City:         "Warszawa",
		Street:       "Prosta",
	}
	if withCredentials {
		user.APIToken = "token-1"
		user.Domain = "praktyka"
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func seedEmployer(t *testing.T, store storage.Store, userID, nip, fakturowniaID string) *models.Employer {
	t.Helper()
	employer := &models.Employer{
		Name:           "Clinic",
		NIP:            nip,
		City:           "Warszawa",
		Street:         "Krzywa",
		DefaultPercent: decimal.NewFromInt(20),
		FakturowniaID:  fakturowniaID,
		UserID:         userID,
	}
	if err := store.CreateEmployer(context.Background(), employer); err != nil {
		t.Fatalf("CreateEmployer failed: %v", err)
	}
	return employer
}

// testFactory points every constructed client at a fake server.
func testFactory(baseURL string) func(domain, apiToken string) *fakturownia.Client {
	return func(_, apiToken string) *fakturownia.Client {
		return fakturownia.New(fakturownia.Config{APIToken: apiToken, BaseURL: baseURL})
	}
}

type capturingPublisher struct {
	issued []events.InvoiceIssued
}

func (p *capturingPublisher) PublishInvoiceIssued(_ context.Context, event events.InvoiceIssued) error {
	p.issued = append(p.issued, event)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func TestIssueInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("issues externally then persists the reported values", func(t *testing.T) {
		store := newTestStore(t)
		user := seedUser(t, store, true)
		employer := seedEmployer(t, store, user.ID, "1111111111", "55")

		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("Failed to decode payload: %v", err)
			}
			fmt.Fprint(w, `{"id":900,"number":"3/2024","sell_date":"2024-03-31","price_gross":"1500.00"}`)
		}))
		defer server.Close()

		publisher := &capturingPublisher{}
		svc := NewInvoiceService(store, func(domain, token string) Invoicer {
			return testFactory(server.URL)(domain, token)
		}, publisher, discardLogger())

		price := decimal.RequireFromString("1500")
		invoice, err := svc.IssueInvoice(ctx, user.ID, IssueInvoiceRequest{
			EmployerID: employer.ID,
			SellDate:   models.NewDate(2024, 3, 31),
			IssueDate:  models.NewDate(2024, 4, 1),
			PaymentTo:  models.NewDate(2024, 4, 15),
			Positions:  []IssuePosition{{Name: "Konsultacje 03/2024", Quantity: 1, Price: &price}},
		})
		if err != nil {
			t.Fatalf("IssueInvoice failed: %v", err)
		}

		if invoice.FakturowniaID != "900" || invoice.Number != "3/2024" {
			t.Errorf("Invoice = %+v", invoice)
		}
		if !invoice.PriceGross.Equal(decimal.RequireFromString("1500.00")) {
			t.Errorf("PriceGross = %s, want the externally reported 1500.00", invoice.PriceGross)
		}

		wire := captured["invoice"].(map[string]any)
		if wire["seller_name"] != user.Name || wire["seller_tax_no"] != user.NIP {
			t.Errorf("Seller = %v/%v, want profile values", wire["seller_name"], wire["seller_tax_no"])
		}
		if wire["client_id"] != "55" {
			t.Errorf("client_id = %v, want 55", wire["client_id"])
		}

		stored, err := store.ListInvoices(ctx, user.ID, "")
		if err != nil {
			t.Fatalf("ListInvoices failed: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("Stored %d invoices, want 1", len(stored))
		}

		if len(publisher.issued) != 1 || publisher.issued[0].Number != "3/2024" {
			t.Errorf("Published events = %+v, want one for 3/2024", publisher.issued)
		}
	})

	t.Run("nil position price falls back to the month's earnings", func(t *testing.T) {
		store := newTestStore(t)
		user := seedUser(t, store, true)
		employer := seedEmployer(t, store, user.ID, "1111111111", "55")

		// 1000 at the employer's default 20 percent = 200 earnings.
		tx := &models.Transaction{
			Date:       models.NewDate(2024, 3, 10),
			Amount:     decimal.NewFromInt(1000),
			Percent:    decimal.NewFromInt(20),
			EmployerID: employer.ID,
			UserID:     user.ID,
		}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("Failed to decode payload: %v", err)
			}
			fmt.Fprint(w, `{"id":901,"number":"4/2024","sell_date":"2024-03-31","price_gross":"200"}`)
		}))
		defer server.Close()

		svc := NewInvoiceService(store, func(domain, token string) Invoicer {
			return testFactory(server.URL)(domain, token)
		}, nil, discardLogger())

		_, err := svc.IssueInvoice(ctx, user.ID, IssueInvoiceRequest{
			EmployerID: employer.ID,
			SellDate:   models.NewDate(2024, 3, 31),
			IssueDate:  models.NewDate(2024, 4, 1),
			PaymentTo:  models.NewDate(2024, 4, 15),
			Positions:  []IssuePosition{{Name: "Konsultacje", Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("IssueInvoice failed: %v", err)
		}

		position := captured["invoice"].(map[string]any)["positions"].([]any)[0].(map[string]any)
		price, err := decimal.NewFromString(fmt.Sprint(position["total_price_gross"]))
		if err != nil {
			t.Fatalf("Bad wire price %v: %v", position["total_price_gross"], err)
		}
		if !price.Equal(decimal.NewFromInt(200)) {
			t.Errorf("Suggested price = %s, want 200", price)
		}
	})

	t.Run("external failure leaves no local invoice", func(t *testing.T) {
		store := newTestStore(t)
		user := seedUser(t, store, true)
		employer := seedEmployer(t, store, user.ID, "1111111111", "55")

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewInvoiceService(store, func(domain, token string) Invoicer {
			return testFactory(server.URL)(domain, token)
		}, nil, discardLogger())

		price := decimal.NewFromInt(100)
		_, err := svc.IssueInvoice(ctx, user.ID, IssueInvoiceRequest{
			EmployerID: employer.ID,
			SellDate:   models.NewDate(2024, 3, 31),
			IssueDate:  models.NewDate(2024, 4, 1),
			PaymentTo:  models.NewDate(2024, 4, 15),
			Positions:  []IssuePosition{{Name: "Konsultacje", Price: &price}},
		})
		if !errors.Is(err, ErrExternal) {
			t.Fatalf("Expected ErrExternal, got %v", err)
		}

		stored, err := store.ListInvoices(ctx, user.ID, "")
		if err != nil {
			t.Fatalf("ListInvoices failed: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("Stored %d invoices after external failure, want 0", len(stored))
		}
	})

	t.Run("missing credentials are rejected before any call", func(t *testing.T) {
		store := newTestStore(t)
		user := seedUser(t, store, false)
		employer := seedEmployer(t, store, user.ID, "1111111111", "55")

		svc := NewInvoiceService(store, func(string, string) Invoicer {
			t.Fatal("Factory must not run without credentials")
			return nil
		}, nil, discardLogger())

		price := decimal.NewFromInt(100)
		_, err := svc.IssueInvoice(ctx, user.ID, IssueInvoiceRequest{
			EmployerID: employer.ID,
			SellDate:   models.NewDate(2024, 3, 31),
			IssueDate:  models.NewDate(2024, 4, 1),
			PaymentTo:  models.NewDate(2024, 4, 15),
			Positions:  []IssuePosition{{Name: "Konsultacje", Price: &price}},
		})
		if !errors.Is(err, ErrNoCredentials) {
			t.Errorf("Expected ErrNoCredentials, got %v", err)
		}
	})

	t.Run("unsynced employer is rejected", func(t *testing.T) {
		store := newTestStore(t)
		user := seedUser(t, store, true)
		employer := seedEmployer(t, store, user.ID, "1111111111", "")

		svc := NewInvoiceService(store, func(string, string) Invoicer {
			t.Fatal("Factory must not run for an unsynced employer")
			return nil
		}, nil, discardLogger())

		price := decimal.NewFromInt(100)
		_, err := svc.IssueInvoice(ctx, user.ID, IssueInvoiceRequest{
			EmployerID: employer.ID,
			SellDate:   models.NewDate(2024, 3, 31),
			IssueDate:  models.NewDate(2024, 4, 1),
			PaymentTo:  models.NewDate(2024, 4, 15),
			Positions:  []IssuePosition{{Name: "Konsultacje", Price: &price}},
		})
		if !errors.Is(err, ErrEmployerNotSynced) {
			t.Errorf("Expected ErrEmployerNotSynced, got %v", err)
		}
	})

	t.Run("missing payment date is rejected before any call", func(t *testing.T) {
		store := newTestStore(t)
		user := seedUser(t, store, true)
		employer := seedEmployer(t, store, user.ID, "1111111111", "55")

		svc := NewInvoiceService(store, func(string, string) Invoicer {
			t.Fatal("Factory must not run with an incomplete date set")
			return nil
		}, nil, discardLogger())

		price := decimal.NewFromInt(100)
		_, err := svc.IssueInvoice(ctx, user.ID, IssueInvoiceRequest{
			EmployerID: employer.ID,
			SellDate:   models.NewDate(2024, 3, 31),
			IssueDate:  models.NewDate(2024, 4, 1),
			Positions:  []IssuePosition{{Name: "Konsultacje", Price: &price}},
		})
		if err == nil {
			t.Fatal("IssueInvoice accepted a zero payment date")
		}
	})

	t.Run("empty positions are rejected", func(t *testing.T) {
		svc := NewInvoiceService(newTestStore(t), nil, nil, discardLogger())
		_, err := svc.IssueInvoice(ctx, "user-1", IssueInvoiceRequest{
			EmployerID: "emp-1",
			SellDate:   models.NewDate(2024, 3, 31),
			IssueDate:  models.NewDate(2024, 4, 1),
		})
		if !errors.Is(err, ErrNoPositions) {
			t.Errorf("Expected ErrNoPositions, got %v", err)
		}
	})
}

func TestSyncEmployers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := seedUser(t, store, true)

	// An employer at 35 percent that the sync must not reset.
	existing := seedEmployer(t, store, user.ID, "1111111111", "")
	existing.DefaultPercent = decimal.NewFromInt(35)
	if err := store.UpdateEmployer(ctx, existing); err != nil {
		t.Fatalf("UpdateEmployer failed: %v", err)
	}

	svc := NewSyncService(store, nil, discardLogger())

	clients := []fakturownia.ExternalClient{
		{ID: json.Number("10"), Name: "Clinic Renamed", TaxNo: "1111111111", City: "Gdańsk", Street: "Długa", BuildingNumber: "2"},
		{ID: json.Number("11"), Name: "New Clinic", TaxNo: "2222222222", City: "Kraków", Street: "Szeroka"},
		{ID: json.Number("12"), Name: "Broken"},
	}

	results := svc.SyncEmployers(ctx, user.ID, clients)
	if len(results) != 3 {
		t.Fatalf("Got %d results, want 3", len(results))
	}

	t.Run("existing employer updated, percent preserved", func(t *testing.T) {
		if results[0].Status != SyncUpdated {
			t.Fatalf("Status = %s, want %s (%s)", results[0].Status, SyncUpdated, results[0].Error)
		}
		got, err := store.GetEmployerByNIP(ctx, user.ID, "1111111111")
		if err != nil {
			t.Fatalf("GetEmployerByNIP failed: %v", err)
		}
		if got.Name != "Clinic Renamed" || got.FakturowniaID != "10" || got.City != "Gdańsk" {
			t.Errorf("Got %+v", got)
		}
		if !got.DefaultPercent.Equal(decimal.NewFromInt(35)) {
			t.Errorf("DefaultPercent = %s, want the preserved 35", got.DefaultPercent)
		}
	})

	t.Run("unmatched client created at 100 percent", func(t *testing.T) {
		if results[1].Status != SyncCreated {
			t.Fatalf("Status = %s, want %s (%s)", results[1].Status, SyncCreated, results[1].Error)
		}
		got, err := store.GetEmployerByNIP(ctx, user.ID, "2222222222")
		if err != nil {
			t.Fatalf("GetEmployerByNIP failed: %v", err)
		}
		if !got.DefaultPercent.Equal(decimal.NewFromInt(100)) {
			t.Errorf("DefaultPercent = %s, want 100", got.DefaultPercent)
		}
		if got.FakturowniaID != "11" {
			t.Errorf("FakturowniaID = %s, want 11", got.FakturowniaID)
		}
	})

	t.Run("client without tax number fails without stalling the batch", func(t *testing.T) {
		if results[2].Status != SyncFailed || results[2].Error == "" {
			t.Errorf("Result = %+v, want a failed entry with a message", results[2])
		}
	})
}

// A matched client missing required fields must not overwrite the
// stored employer with an invalid record.
func TestSyncEmployersRejectsInvalidUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := seedUser(t, store, true)
	existing := seedEmployer(t, store, user.ID, "1111111111", "")

	svc := NewSyncService(store, nil, discardLogger())

	results := svc.SyncEmployers(ctx, user.ID, []fakturownia.ExternalClient{
		{ID: json.Number("10"), Name: "", TaxNo: "1111111111", City: ""},
	})
	if len(results) != 1 {
		t.Fatalf("Got %d results, want 1", len(results))
	}
	if results[0].Status != SyncFailed || results[0].Error == "" {
		t.Fatalf("Result = %+v, want a failed entry with a message", results[0])
	}

	got, err := store.GetEmployerByNIP(ctx, user.ID, "1111111111")
	if err != nil {
		t.Fatalf("GetEmployerByNIP failed: %v", err)
	}
	if got.Name != existing.Name || got.City != existing.City || got.FakturowniaID != "" {
		t.Errorf("Stored employer changed to %+v", got)
	}
	if errs := got.Validate(); errs != nil {
		t.Errorf("Stored employer no longer validates: %v", errs)
	}
}

func TestFetchAllClients(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := seedUser(t, store, true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `[{"id":10,"name":"A","tax_no":"1111111111"},{"id":11,"name":"B","tax_no":"2222222222"}]`)
		case "2":
			fmt.Fprint(w, `[{"id":12,"name":"C","tax_no":"3333333333"}]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer server.Close()

	svc := NewSyncService(store, func(domain, token string) ClientLister {
		return testFactory(server.URL)(domain, token)
	}, discardLogger())

	clients, err := svc.FetchAllClients(ctx, user.ID)
	if err != nil {
		t.Fatalf("FetchAllClients failed: %v", err)
	}
	if len(clients) != 3 {
		t.Errorf("Got %d clients across pages, want 3", len(clients))
	}

	t.Run("without credentials", func(t *testing.T) {
		bare := &models.User{
			Email: "bare@example.com", PasswordHash: "hash", Name: "Bare",
			NIP: "9999999999", REGON: "999999999", City: "Poznań", Street: "Wąska",
		}
		if err := store.CreateUser(ctx, bare); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if _, err := svc.FetchAllClients(ctx, bare.ID); !errors.Is(err, ErrNoCredentials) {
			t.Errorf("Expected ErrNoCredentials, got %v", err)
		}
	})
}
