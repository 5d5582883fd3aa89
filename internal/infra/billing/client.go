package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"storefront/internal/pkg/config"
)

// ErrNotFound maps the provider's 404 to a stable sentinel.
var ErrNotFound = errors.New("billing: not found")

// Client is the full surface consumed from the billing provider. Checkout
// creation, session fetch, product and customer management all ride the same
// retry/breaker policy.
type Client interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)

	CreateProduct(ctx context.Context, params ProductParams) (*Product, error)
	GetProduct(ctx context.Context, ref string) (*Product, error)
	ArchiveProduct(ctx context.Context, ref string) error

	GetCustomerByOwner(ctx context.Context, ownerUserID string) (*Customer, error)
	CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error)
	UpdateCustomer(ctx context.Context, id string, info CustomerInfo) (*Customer, error)
}

type httpClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	retrier *retrier
	breaker *Breaker
}

func NewClient(cfg config.BillingConfig, breaker *Breaker) Client {
	return &httpClient{
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		retrier: newRetrier(cfg.MaxRetries),
		breaker: breaker,
	}
}

func (c *httpClient) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	var session CheckoutSession
	err := c.call(ctx, http.MethodPost, "/v1/checkout/sessions", params, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *httpClient) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	var session CheckoutSession
	err := c.call(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *httpClient) CreateProduct(ctx context.Context, params ProductParams) (*Product, error) {
	var product Product
	err := c.call(ctx, http.MethodPost, "/v1/products", params, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *httpClient) GetProduct(ctx context.Context, ref string) (*Product, error) {
	var product Product
	err := c.call(ctx, http.MethodGet, "/v1/products/"+url.PathEscape(ref), nil, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *httpClient) ArchiveProduct(ctx context.Context, ref string) error {
	return c.call(ctx, http.MethodPost, "/v1/products/"+url.PathEscape(ref)+"/archive", nil, nil)
}

func (c *httpClient) GetCustomerByOwner(ctx context.Context, ownerUserID string) (*Customer, error) {
	var customer Customer
	err := c.call(ctx, http.MethodGet, "/v1/customers/by-owner/"+url.PathEscape(ownerUserID), nil, &customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *httpClient) CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error) {
	var customer Customer
	err := c.call(ctx, http.MethodPost, "/v1/customers", params, &customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *httpClient) UpdateCustomer(ctx context.Context, id string, info CustomerInfo) (*Customer, error) {
	var customer Customer
	err := c.call(ctx, http.MethodPost, "/v1/customers/"+url.PathEscape(id), info, &customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// call runs one logical provider operation through the breaker and the retry
// policy. Terminal provider errors (4xx other than 429) are never retried.
func (c *httpClient) call(ctx context.Context, method, path string, body, out any) error {
	if err := c.breaker.Allow(); err != nil {
		return err
	}

	err := c.retrier.Do(ctx, func() error {
		return c.doRequest(ctx, method, path, body, out)
	})
	c.breaker.Record(err)
	return err
}

func (c *httpClient) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("billing: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("billing: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		provErr := &ProviderError{StatusCode: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(provErr); decodeErr != nil {
			provErr.Message = resp.Status
		}
		return provErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("billing: decode response: %w", err)
	}
	return nil
}

// transportError wraps connection-level failures; always retryable.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "billing: transport failure: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}
