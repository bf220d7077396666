package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/simonvc/simplebalance/internal/ledger"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func (c *Client) CreateAccount(ctx context.Context, f ledger.AccountFields) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.send(ctx, http.MethodPost, "/api/v1/accounts", f, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	var result []ledger.Account
	if err := c.get(ctx, "/api/v1/accounts", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.get(ctx, accountPath(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DefaultAccount returns the account to open first, or an error matching
// IsNotFound when there is none.
func (c *Client) DefaultAccount(ctx context.Context) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.get(ctx, "/api/v1/accounts/default", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EditAccount changes the set fields of f and leaves the rest alone.
func (c *Client) EditAccount(ctx context.Context, id string, f ledger.AccountFields) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.send(ctx, http.MethodPatch, accountPath(id), f, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, accountPath(id), nil, nil)
}

// Days returns the account's transactions grouped by day in loc, with
// running balances.
func (c *Client) Days(ctx context.Context, id string, loc *time.Location) ([]ledger.Day, error) {
	params := url.Values{}
	if loc != nil && loc.String() != "Local" {
		params.Set("tz", loc.String())
	}
	path := accountPath(id) + "/days"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var result []ledger.Day
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ListTransactions(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	var result []ledger.Transaction
	if err := c.get(ctx, accountPath(accountID)+"/transactions", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetTransaction(ctx context.Context, accountID, txnID string) (*ledger.Transaction, error) {
	var result ledger.Transaction
	if err := c.get(ctx, txnPath(accountID, txnID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateTransaction(ctx context.Context, accountID string, f ledger.TransactionFields) (*ledger.Transaction, error) {
	var result ledger.Transaction
	if err := c.send(ctx, http.MethodPost, accountPath(accountID)+"/transactions", f, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) EditTransaction(ctx context.Context, accountID, txnID string, f ledger.TransactionFields) (*ledger.Transaction, error) {
	var result ledger.Transaction
	if err := c.send(ctx, http.MethodPut, txnPath(accountID, txnID), f, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CopyTransaction adds a new transaction with the fields of an existing one.
// A zero cleared keeps the original date.
func (c *Client) CopyTransaction(ctx context.Context, accountID, txnID string, cleared time.Time) (*ledger.Transaction, error) {
	body := map[string]any{}
	if !cleared.IsZero() {
		body["cleared"] = cleared
	}
	var result ledger.Transaction
	if err := c.send(ctx, http.MethodPost, txnPath(accountID, txnID)+"/copy", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, accountID, txnID string) error {
	return c.send(ctx, http.MethodDelete, txnPath(accountID, txnID), nil, nil)
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func accountPath(id string) string {
	return "/api/v1/accounts/" + url.PathEscape(id)
}

func txnPath(accountID, txnID string) string {
	return accountPath(accountID) + "/transactions/" + url.PathEscape(txnID)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.send(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doRequest(req, result)
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
	}

	if result != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
