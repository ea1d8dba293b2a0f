package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Client fetches the menu from the remote menu service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a menu client against the service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// remoteItem mirrors the menu service payload. mrp is the unit price.
type remoteItem struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	DefaultName string          `json:"defaultName"`
	Name        string          `json:"name"`
	Mrp         decimal.Decimal `json:"mrp"`
}

// Fetch loads the full menu for the given language code. The call is
// single-shot; callers decide whether to fall back to the seed catalog.
func (c *Client) Fetch(ctx context.Context, languageCode string) ([]Item, error) {
	url := fmt.Sprintf("%s/Menu/GetMenuList/languagecode?languagecode=%s", c.baseURL, languageCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build menu request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch menu: unexpected status %d", resp.StatusCode)
	}

	var remote []remoteItem
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("decode menu response: %w", err)
	}

	items := make([]Item, 0, len(remote))
	for _, r := range remote {
		if r.Mrp.IsNegative() {
			return nil, fmt.Errorf("menu item %s: negative price %s", r.Code, r.Mrp)
		}
		items = append(items, Item{
			ID:        r.ID,
			Code:      r.Code,
			Name:      r.DefaultName,
			LocalName: r.Name,
			UnitPrice: r.Mrp,
		})
	}
	return items, nil
}
