// Package client talks to the MoneyMigo REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moneymigo/internal/models"
)

const DefaultBaseURL = "http://localhost:5000/api"

// APIError is a non-2xx response. Status is 0 when the server was unreachable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "network error: " + e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &payload)
		msg := payload.Error
		if msg == "" {
			msg = payload.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out.Status, err
}

func (c *Client) ListTransactions(ctx context.Context, q url.Values) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context, q url.Values) (models.TransactionStats, error) {
	var out models.TransactionStats
	err := c.do(ctx, http.MethodGet, "/transactions/stats", q, nil, &out)
	return out, err
}

func (c *Client) CreateTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	var out models.Transaction
	err := c.do(ctx, http.MethodPost, "/transactions", nil, in, &out)
	return out, err
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, in models.TransactionInput) (models.Transaction, error) {
	var out models.Transaction
	err := c.do(ctx, http.MethodPut, "/transactions/"+strconv.FormatInt(id, 10), nil, in, &out)
	return out, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) Withdraw(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, "/transactions/"+strconv.FormatInt(id, 10)+"/withdraw", nil, nil, nil)
}

func (c *Client) Reopen(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, "/transactions/"+strconv.FormatInt(id, 10)+"/reopen", nil, nil, nil)
}

func (c *Client) ListPaymentTypes(ctx context.Context) ([]models.PaymentType, error) {
	var out []models.PaymentType
	if err := c.do(ctx, http.MethodGet, "/payment-types", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddPaymentType(ctx context.Context, name string) (models.PaymentType, error) {
	var out models.PaymentType
	err := c.do(ctx, http.MethodPost, "/payment-types", nil, models.PaymentTypeInput{Name: name}, &out)
	return out, err
}

func (c *Client) DeletePaymentType(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/payment-types/"+strconv.FormatInt(id, 10), nil, nil, nil)
}
