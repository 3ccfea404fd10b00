package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

const DefaultBaseURL = "https://api.paystack.co"

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeBody struct {
	Email       string                     `json:"email"`
	Amount      int64                      `json:"amount"`
	Reference   string                     `json:"reference"`
	CallbackURL string                     `json:"callback_url,omitempty"`
	Metadata    domain.TransactionMetadata `json:"metadata"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// TransactionData is the transaction object shared by verify responses and
// webhook event payloads.
type TransactionData struct {
	ID        int64                      `json:"id"`
	Status    string                     `json:"status"`
	Reference string                     `json:"reference"`
	Amount    int64                      `json:"amount"`
	Currency  string                     `json:"currency"`
	PaidAt    *time.Time                 `json:"paid_at"`
	Metadata  domain.TransactionMetadata `json:"metadata"`
}

func (d TransactionData) Transaction() domain.Transaction {
	return domain.Transaction{
		Reference:   d.Reference,
		Status:      domain.TransactionStatus(d.Status),
		AmountMinor: d.Amount,
		PaidAt:      d.PaidAt,
		Metadata:    d.Metadata,
	}
}

func (c *Client) InitializeTransaction(ctx context.Context, req domain.InitializeRequest) (*domain.Authorization, error) {
	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	var resp envelope[initializeData]
	err := c.do(ctx, http.MethodPost, "/transaction/initialize", initializeBody{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: initialize rejected: %s", domain.ErrGateway, resp.Message)
	}

	return &domain.Authorization{
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
	}, nil
}

func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*domain.Transaction, error) {
	var resp envelope[TransactionData]
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("%w: verify rejected: %s", domain.ErrGateway, resp.Message)
	}

	tx := resp.Data.Transaction()
	return &tx, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", domain.ErrGateway, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrGateway, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrGateway, method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrGateway, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned %d: %s", domain.ErrGateway, method, path, res.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrGateway, err)
	}

	return nil
}
