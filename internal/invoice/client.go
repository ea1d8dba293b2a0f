package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSubmitFailed wraps remote invoice submission failures. There is no
// automatic retry; the operator resubmits from the billing view.
var ErrSubmitFailed = errors.New("invoice submission failed")

// Client submits generated invoices to the remote invoice service, which
// owns their persistence.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an invoice client against the service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type submitLine struct {
	MenuID int64  `json:"menuId"`
	Qty    int    `json:"qty"`
	Price  string `json:"price"`
}

type submitRequest struct {
	InvoiceNumber string       `json:"invoiceNumber"`
	TableID       int          `json:"tableId"`
	Date          string       `json:"date"`
	TotalCost     string       `json:"totalCost"`
	EmployeeID    int64        `json:"employeeId"`
	Lines         []submitLine `json:"lines"`
}

type submitResponse struct {
	InvoiceNumber string `json:"invoiceNumber"`
}

// Submit posts the invoice and returns the server-assigned reference.
func (c *Client) Submit(ctx context.Context, inv Invoice) (string, error) {
	lines := make([]submitLine, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = submitLine{
			MenuID: l.MenuID,
			Qty:    l.Quantity,
			Price:  l.UnitPrice.StringFixed(2),
		}
	}

	body, err := json.Marshal(submitRequest{
		InvoiceNumber: inv.Number,
		TableID:       inv.TableID,
		Date:          inv.GeneratedAt.Format(time.RFC3339),
		TotalCost:     inv.Total.StringFixed(2),
		EmployeeID:    inv.IssuedBy,
		Lines:         lines,
	})
	if err != nil {
		return "", fmt.Errorf("marshal invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Invoice", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: unexpected status %d", ErrSubmitFailed, resp.StatusCode)
	}

	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrSubmitFailed, err)
	}
	if sr.InvoiceNumber == "" {
		// Server accepted but returned no reference; keep ours.
		return inv.Number, nil
	}
	return sr.InvoiceNumber, nil
}
