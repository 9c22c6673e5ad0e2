// Package client is a typed HTTP client for the ShopKart API. Every call
// returns a concrete result or an error; non-2xx responses come back as
// *APIError carrying the server's message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopkart/shopkart-api/internal/cart"
	"github.com/shopkart/shopkart-api/internal/credential"
	"github.com/shopkart/shopkart-api/internal/models"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to one API base URL. Set Token after Login or Signup to make
// authenticated calls.
type Client struct {
	baseURL string
	http    *http.Client
	Token   string
}

// New creates a client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func orderPath(id int64) string {
	return "/v1/orders/" + strconv.FormatInt(id, 10)
}

// --- Users ---

type authEnvelope struct {
	User models.AuthUser `json:"user"`
}

// Signup registers an account. The password is checked locally first so an
// obviously weak one never leaves the machine; the error wraps
// credential.ErrRequirements and the first failing rule.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.AuthUser, error) {
	if err := credential.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %w", credential.ErrRequirements, err)
	}

	var out authEnvelope
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/users/signup", body, &out); err != nil {
		return nil, err
	}
	c.Token = out.User.Token
	return &out.User, nil
}

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthUser, error) {
	var out authEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/users/login", body, &out); err != nil {
		return nil, err
	}
	c.Token = out.User.Token
	return &out.User, nil
}

// --- Orders ---

// CreateOrder submits an order. The server re-prices it from the catalogue.
func (c *Client) CreateOrder(ctx context.Context, req cart.OrderRequest) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/v1/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyOrders fetches the logged-in user's order history, newest first.
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/v1/orders/myorders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodGet, orderPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayOrder records a payment provider's result against an order.
func (c *Client) PayOrder(ctx context.Context, id int64, result models.PaymentResult) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPut, orderPath(id)+"/pay", result, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteOrder cancels an unpaid, undelivered order.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, orderPath(id), nil, nil)
}

// --- Carts ---

// Cart is a server-hosted cart with its totals.
type Cart struct {
	ID string `json:"cartId"`
	cart.State
	cart.Prices
}

// CreateCart starts an empty cart.
func (c *Client) CreateCart(ctx context.Context) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodPost, "/v1/carts", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCart fetches a cart by id.
func (c *Client) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodGet, "/v1/carts/"+cartID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddToCart adds quantity units of a product.
func (c *Client) AddToCart(ctx context.Context, cartID string, productID int64, quantity int) (*Cart, error) {
	var out Cart
	body := map[string]any{"productId": productID, "quantity": quantity}
	if err := c.do(ctx, http.MethodPost, "/v1/carts/"+cartID+"/items", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveShippingAddress stores the cart's shipping address.
func (c *Client) SaveShippingAddress(ctx context.Context, cartID string, addr cart.ShippingAddress) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodPut, "/v1/carts/"+cartID+"/shipping", addr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SavePaymentMethod stores the cart's payment method.
func (c *Client) SavePaymentMethod(ctx context.Context, cartID, method string) (*Cart, error) {
	var out Cart
	body := map[string]string{"paymentMethod": method}
	if err := c.do(ctx, http.MethodPut, "/v1/carts/"+cartID+"/payment", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout places an order from the cart and empties it.
func (c *Client) Checkout(ctx context.Context, cartID string) (*models.Order, error) {
	var out struct {
		Order models.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/carts/"+cartID+"/checkout", nil, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}
