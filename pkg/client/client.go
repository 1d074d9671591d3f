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
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/types"
)

// IdempotencyHeader carries the client generated key for order placement.
const IdempotencyHeader = "Idempotency-Key"

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 4096
	successBodyReadLimit int64 = 8 << 20
)

var errBaseURLRequired = errors.New("api base url is required")

// Client talks to the rawmart JSON API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New builds a client rooted at baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) ListMaterials(ctx context.Context, query types.MaterialQuery) ([]types.Material, error) {
	values := url.Values{}
	setIfPresent(values, "search", query.Search)
	setIfPresent(values, "category", query.Category)
	setIfPresent(values, "sort_by", query.SortBy)
	setIfPresent(values, "filter_by", query.FilterBy)
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}

	var out []types.Material
	if err := c.do(ctx, call{method: http.MethodGet, path: "/materials", query: values}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMaterial(ctx context.Context, id int64) (*types.Material, error) {
	var out types.Material
	path := "/materials/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, call{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]types.Category, error) {
	var out []types.Category
	if err := c.do(ctx, call{method: http.MethodGet, path: "/categories"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSuppliers(ctx context.Context) ([]types.Supplier, error) {
	var out []types.Supplier
	if err := c.do(ctx, call{method: http.MethodGet, path: "/suppliers"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCart(ctx context.Context, sessionID string) (*types.CartView, error) {
	return c.cartCall(ctx, call{method: http.MethodGet, path: cartPath(sessionID)})
}

func (c *Client) AddItem(ctx context.Context, sessionID string, req types.AddItemRequest) (*types.CartView, error) {
	return c.cartCall(ctx, call{method: http.MethodPost, path: cartPath(sessionID) + "/items", body: req})
}

func (c *Client) UpdateItem(ctx context.Context, sessionID, lineID string, quantity int) (*types.CartView, error) {
	body := types.UpdateItemRequest{Quantity: &quantity}
	return c.cartCall(ctx, call{method: http.MethodPut, path: linePath(sessionID, lineID), body: body})
}

func (c *Client) RemoveItem(ctx context.Context, sessionID, lineID string) (*types.CartView, error) {
	return c.cartCall(ctx, call{method: http.MethodDelete, path: linePath(sessionID, lineID)})
}

func (c *Client) ClearCart(ctx context.Context, sessionID string) (*types.CartView, error) {
	return c.cartCall(ctx, call{method: http.MethodDelete, path: cartPath(sessionID)})
}

// PlaceOrder converts the session cart into an order. Retrying with the same
// idempotency key replays the stored receipt instead of ordering twice.
func (c *Client) PlaceOrder(ctx context.Context, sessionID, idempotencyKey string) (*types.OrderReceipt, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	var out types.OrderReceipt
	err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    "/orders",
		body:    types.PlaceOrderRequest{SessionID: sessionID},
		headers: map[string]string{IdempotencyHeader: idempotencyKey},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrders(ctx context.Context, sessionID string) ([]types.Order, error) {
	var out []types.Order
	if err := c.do(ctx, call{method: http.MethodGet, path: "/orders/" + url.PathEscape(sessionID)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) cartCall(ctx context.Context, req call) (*types.CartView, error) {
	var out types.CartView
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type call struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

func (c *Client) do(ctx context.Context, req call, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "api client not configured")
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s failed", req.method, req.path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, successBodyReadLimit)).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

// decodeError turns a non-2xx response into a typed error. Responses without
// the API error envelope fall back to a code derived from the status.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		typed := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
		if envelope.Error.Details != nil {
			typed = typed.WithDetails(envelope.Error.Details)
		}
		return typed
	}

	code := pkgerrors.FromStatus(resp.StatusCode)
	if code == pkgerrors.CodeInternal && resp.StatusCode < http.StatusInternalServerError {
		code = pkgerrors.CodeDependency
	}
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	return pkgerrors.Wrap(code, cause, fmt.Sprintf("unexpected status %d", resp.StatusCode))
}

func cartPath(sessionID string) string {
	return "/cart/" + url.PathEscape(sessionID)
}

func linePath(sessionID, lineID string) string {
	return cartPath(sessionID) + "/items/" + url.PathEscape(lineID)
}

func setIfPresent(values url.Values, key, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		values.Set(key, trimmed)
	}
}
