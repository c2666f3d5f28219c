package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"praktyka/internal/calculator"
	"praktyka/internal/events"
	"praktyka/internal/fakturownia"
	"praktyka/internal/models"
	"praktyka/internal/storage"
)

var (
	// ErrExternal wraps any failure of the external invoicing call.
	// When it is returned, no local invoice was written.
	ErrExternal = errors.New("external invoicing service failure")

	// ErrNoCredentials means the caller's profile has no API token or
	// domain for the external service.
	ErrNoCredentials = errors.New("profile has no invoicing credentials")

	// ErrEmployerNotSynced means the employer has no external client id
	// and cannot be invoiced.
	ErrEmployerNotSynced = errors.New("employer is not linked to an external client")

	// ErrNoPositions means the issue request carried no line items.
	ErrNoPositions = errors.New("invoice needs at least one position")
)

// Invoicer is the slice of the Fakturownia client the issuance flow
// needs. Tests substitute a client pointed at a fake server.
type Invoicer interface {
	CreateInvoice(ctx context.Context, req fakturownia.InvoiceRequest) (*fakturownia.IssuedInvoice, error)
}

// InvoicerFactory builds an Invoicer for one user's credentials.
type InvoicerFactory func(domain, apiToken string) Invoicer

// DefaultInvoicerFactory builds real Fakturownia clients with the
// given per-call timeout.
func DefaultInvoicerFactory(timeout time.Duration) InvoicerFactory {
	return func(domain, apiToken string) Invoicer {
		return fakturownia.New(fakturownia.Config{
			Domain:   domain,
			APIToken: apiToken,
			Timeout:  timeout,
		})
	}
}

// IssuePosition is one line item of an issue request. A nil Price asks
// the flow to fill in the suggested price: the month's total earnings
// for the employer, taken from the sell date.
type IssuePosition struct {
	Name     string           `json:"name"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

// IssueInvoiceRequest describes one invoice to issue through the
// external service.
type IssueInvoiceRequest struct {
	EmployerID string          `json:"employerId"`
	SellDate   models.Date     `json:"sellDate"`
	IssueDate  models.Date     `json:"issueDate"`
	PaymentTo  models.Date     `json:"paymentTo"`
	Positions  []IssuePosition `json:"positions"`
}

// InvoiceService drives the invoice issuance flow: compose profile,
// employer and positions into an external call, then persist exactly
// one local record of the result. The external call is the commit
// point; a failure there leaves local state untouched.
type InvoiceService struct {
	store     storage.Store
	newClient InvoicerFactory
	publisher events.Publisher
	logger    *slog.Logger
}

// NewInvoiceService creates the issuance flow service.
func NewInvoiceService(store storage.Store, factory InvoicerFactory, publisher events.Publisher, logger *slog.Logger) *InvoiceService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &InvoiceService{
		store:     store,
		newClient: factory,
		publisher: publisher,
		logger:    logger,
	}
}

// IssueInvoice runs the flow for the given caller. The returned
// invoice carries what the external service reported back, not the
// locally computed candidates.
func (s *InvoiceService) IssueInvoice(ctx context.Context, userID string, req IssueInvoiceRequest) (*models.Invoice, error) {
	if len(req.Positions) == 0 {
		return nil, ErrNoPositions
	}
	if req.SellDate.IsZero() || req.IssueDate.IsZero() || req.PaymentTo.IsZero() {
		return nil, fmt.Errorf("sell date, issue date and payment date are required")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !user.HasInvoicingCredentials() {
		return nil, ErrNoCredentials
	}

	employer, err := s.store.GetEmployer(ctx, userID, req.EmployerID)
	if err != nil {
		return nil, fmt.Errorf("load employer: %w", err)
	}
	if employer.FakturowniaID == "" {
		return nil, ErrEmployerNotSynced
	}

	positions, err := s.resolvePositions(ctx, userID, employer.ID, req)
	if err != nil {
		return nil, err
	}

	client := s.newClient(user.Domain, user.APIToken)
	issued, err := client.CreateInvoice(ctx, fakturownia.InvoiceRequest{
		SellDate:    req.SellDate.String(),
		IssueDate:   req.IssueDate.String(),
		PaymentTo:   req.PaymentTo.String(),
		SellerName:  user.Name,
		SellerTaxNo: user.NIP,
		ClientID:    employer.FakturowniaID,
		Positions:   positions,
	})
	if err != nil {
		// No local write on failure: the invoice either exists in the
		// external service and locally, or in neither place.
		return nil, fmt.Errorf("%w: %v", ErrExternal, err)
	}

	sellDate, err := models.ParseDate(issued.SellDate)
	if err != nil {
		sellDate = req.SellDate
	}

	invoice := &models.Invoice{
		FakturowniaID: issued.ID.String(),
		Number:        issued.Number,
		SellDate:      sellDate,
		PriceGross:    issued.PriceGross,
		EmployerID:    employer.ID,
		UserID:        userID,
	}
	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		// The external invoice exists but the local record failed; the
		// caller has to retry from the invoice listing, not re-issue.
		return nil, fmt.Errorf("persist issued invoice %s: %w", issued.Number, err)
	}

	s.logger.Info("Invoice issued",
		"user_id", userID,
		"employer_id", employer.ID,
		"number", invoice.Number,
		"price_gross", invoice.PriceGross)

	if err := s.publisher.PublishInvoiceIssued(ctx, events.InvoiceIssued{
		InvoiceID:  invoice.ID,
		Number:     invoice.Number,
		EmployerID: invoice.EmployerID,
		UserID:     userID,
		PriceGross: invoice.PriceGross.String(),
		SellDate:   invoice.SellDate.String(),
	}); err != nil {
		// Event delivery is best effort; the invoice itself is safe.
		s.logger.Warn("Failed to publish invoice event", "number", invoice.Number, "error", err)
	}

	return invoice, nil
}

// resolvePositions fills nil prices with the suggested candidate:
// total earnings for the employer in the sell date's month.
func (s *InvoiceService) resolvePositions(ctx context.Context, userID, employerID string, req IssueInvoiceRequest) ([]fakturownia.Position, error) {
	var suggested decimal.Decimal
	needSuggested := false
	for _, p := range req.Positions {
		if p.Price == nil {
			needSuggested = true
			break
		}
	}
	if needSuggested {
		txs, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{
			EmployerID: employerID,
			Month:      int(req.SellDate.Month()),
			Year:       req.SellDate.Year(),
		})
		if err != nil {
			return nil, fmt.Errorf("load transactions for price suggestion: %w", err)
		}
		suggested = calculator.Summarize(txs, nil).TotalEarnings
	}

	positions := make([]fakturownia.Position, 0, len(req.Positions))
	for _, p := range req.Positions {
		price := suggested
		if p.Price != nil {
			price = *p.Price
		}
		quantity := p.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		positions = append(positions, fakturownia.Position{
			Name:            p.Name,
			Tax:             "zw",
			TotalPriceGross: price,
			Quantity:        quantity,
		})
	}
	return positions, nil
}
