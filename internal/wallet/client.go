package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nicoguerrero/boleteria/internal/domain"
)

// Wallet is the prepaid-balance collaborator. The ledger itself lives in
// another service; this core only calls credit and debit, and the remote
// side enforces the non-negative-balance invariant.
type Wallet interface {
	Credit(ctx context.Context, accountID int64, amountCents int64) error
	Debit(ctx context.Context, accountID int64, amountCents int64) error
}

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Credit(ctx context.Context, accountID int64, amountCents int64) error {
	return c.post(ctx, accountID, "credit", amountCents)
}

func (c *HTTPClient) Debit(ctx context.Context, accountID int64, amountCents int64) error {
	return c.post(ctx, accountID, "debit", amountCents)
}

func (c *HTTPClient) post(ctx context.Context, accountID int64, op string, amountCents int64) error {
	payload, err := json.Marshal(map[string]int64{"amount_cents": amountCents})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/accounts/%d/%s", c.baseURL, accountID, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return domain.ErrInsufficientFunds
	default:
		return fmt.Errorf("wallet %s for account %d: unexpected status %d", op, accountID, resp.StatusCode)
	}
}

var _ Wallet = (*HTTPClient)(nil)
