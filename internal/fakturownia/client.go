// Package fakturownia is a minimal HTTP client for the Fakturownia
// invoicing service, covering only the calls this application makes:
// creating an invoice and listing clients. The service is the source
// of truth for issued invoices; this client never retries and every
// call runs under a bounded timeout.
package fakturownia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

// Config binds a client to one account.
type Config struct {
	// Domain is the account subdomain: https://{domain}.fakturownia.pl.
	Domain string

	// APIToken authenticates every request.
	APIToken string

	// Timeout bounds each call. Zero means 10 seconds.
	Timeout time.Duration

	// BaseURL overrides the derived URL; tests point it at a fake
	// server.
	BaseURL string
}

// Client talks to one Fakturownia account.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// New creates a client for the given account.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.fakturownia.pl", cfg.Domain)
	}
	return &Client{
		baseURL:    baseURL,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Position is one invoice line item.
type Position struct {
	Name string `json:"name"`
	// Tax is the VAT category; medical services bill as "zw" (exempt).
	Tax             string          `json:"tax"`
	TotalPriceGross decimal.Decimal `json:"total_price_gross"`
	Quantity        int             `json:"quantity"`
}

// InvoiceRequest is the invoice to issue. The service assigns the
// number itself, which is why Number is always null on the wire.
type InvoiceRequest struct {
	SellDate    string
	IssueDate   string
	PaymentTo   string
	SellerName  string
	SellerTaxNo string
	// ClientID is the buyer's client id inside Fakturownia, attached
	// to the employer by the sync flow.
	ClientID  string
	Positions []Position
}

// IssuedInvoice is what the service reports back for a created
// invoice. These values, not the locally computed candidates, get
// persisted.
type IssuedInvoice struct {
	ID         json.Number     `json:"id"`
	Number     string          `json:"number"`
	SellDate   string          `json:"sell_date"`
	PriceGross decimal.Decimal `json:"price_gross"`
}

// ExternalClient is one client record from the clients listing.
type ExternalClient struct {
	ID             json.Number `json:"id"`
	Name           string      `json:"name"`
	TaxNo          string      `json:"tax_no"`
	City           string      `json:"city"`
	Street         string      `json:"street"`
	BuildingNumber string      `json:"building_number"`
}

type invoiceEnvelope struct {
	APIToken string      `json:"api_token"`
	Invoice  wireInvoice `json:"invoice"`
}

type wireInvoice struct {
	Kind        string     `json:"kind"`
	Number      *string    `json:"number"`
	SellDate    string     `json:"sell_date"`
	IssueDate   string     `json:"issue_date"`
	PaymentTo   string     `json:"payment_to"`
	SellerName  string     `json:"seller_name"`
	SellerTaxNo string     `json:"seller_tax_no"`
	ClientID    string     `json:"client_id"`
	Positions   []Position `json:"positions"`
}

// CreateInvoice issues a VAT invoice and returns the service's record
// of it. A non-2xx response is an error; nothing is retried.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*IssuedInvoice, error) {
	payload := invoiceEnvelope{
		APIToken: c.apiToken,
		Invoice: wireInvoice{
			Kind:        "vat",
			Number:      nil,
			SellDate:    req.SellDate,
			IssueDate:   req.IssueDate,
			PaymentTo:   req.PaymentTo,
			SellerName:  req.SellerName,
			SellerTaxNo: req.SellerTaxNo,
			ClientID:    req.ClientID,
			Positions:   req.Positions,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoices.json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("create invoice: unexpected status %d: %s", resp.StatusCode, detail)
	}

	issued := &IssuedInvoice{}
	if err := json.NewDecoder(resp.Body).Decode(issued); err != nil {
		return nil, fmt.Errorf("decode invoice response: %w", err)
	}

	return issued, nil
}

// ListClients fetches one page of the account's client records.
func (c *Client) ListClients(ctx context.Context, page int) ([]ExternalClient, error) {
	if page < 1 {
		page = 1
	}

	endpoint := fmt.Sprintf("%s/clients.json?api_token=%s&page=%d", c.baseURL, url.QueryEscape(c.apiToken), page)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("list clients: unexpected status %d: %s", resp.StatusCode, detail)
	}

	var clients []ExternalClient
	if err := json.NewDecoder(resp.Body).Decode(&clients); err != nil {
		return nil, fmt.Errorf("decode clients response: %w", err)
	}

	return clients, nil
}
