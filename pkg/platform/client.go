package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrConflict is returned when the platform rejects a create because the record exists
	ErrConflict = errors.New("platform: record already exists")
	// ErrPreconditionFailed is returned when an If-Match guarded write is rejected
	ErrPreconditionFailed = errors.New("platform: precondition failed")
)

// APIError is returned for any non-2xx platform response
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Client represents a client for the commerce platform that stores customers and prize records
type Client struct {
	BaseURL     string
	AccessToken string
	client      *http.Client
}

// Customer is a platform customer record
type Customer struct {
	ID    string   `json:"id"`
	Phone string   `json:"phone"`
	Tags  []string `json:"tags"`
}

// Metaobject is a typed platform record with string-valued fields
type Metaobject struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Handle    string            `json:"handle"`
	Fields    map[string]string `json:"fields"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewClient creates a new platform client
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

// FindCustomerByPhone returns the first customer with the given phone, or nil if none
func (c *Client) FindCustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	var resp struct {
		Customers []Customer `json:"customers"`
	}
	path := "/customers/search?" + url.Values{"phone": {phone}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Customers) == 0 {
		return nil, nil
	}
	return &resp.Customers[0], nil
}

// CreateCustomer creates a customer. The platform answers 409 when the phone is taken.
func (c *Client) CreateCustomer(ctx context.Context, phone string, tags []string) (*Customer, error) {
	body := map[string]interface{}{
		"customer": Customer{Phone: phone, Tags: tags},
	}
	var resp struct {
		Customer Customer `json:"customer"`
	}
	if err := c.do(ctx, http.MethodPost, "/customers", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}

// AddCustomerTags appends tags to a customer
func (c *Client) AddCustomerTags(ctx context.Context, customerID string, tags []string) error {
	body := map[string]interface{}{"tags": tags}
	return c.do(ctx, http.MethodPost, "/customers/"+url.PathEscape(customerID)+"/tags", nil, body, nil)
}

// ListMetaobjects returns up to limit metaobjects of the given type in platform order
func (c *Client) ListMetaobjects(ctx context.Context, objectType string, limit int) ([]Metaobject, error) {
	var resp struct {
		Metaobjects []Metaobject `json:"metaobjects"`
	}
	q := url.Values{"type": {objectType}, "first": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/metaobjects?"+q.Encode(), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Metaobjects, nil
}

// UpdateMetaobject replaces the given fields. A non-empty ifMatch makes the write conditional.
func (c *Client) UpdateMetaobject(ctx context.Context, id string, fields map[string]string, ifMatch string) error {
	headers := map[string]string{}
	if ifMatch != "" {
		headers["If-Match"] = ifMatch
	}
	body := map[string]interface{}{"fields": fields}
	return c.do(ctx, http.MethodPut, "/metaobjects/"+url.PathEscape(id), headers, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("platform: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("platform: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Access-Token", c.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode == http.StatusPreconditionFailed:
		return ErrPreconditionFailed
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("platform %s %s: decode response: %w", method, path, err)
	}
	return nil
}
