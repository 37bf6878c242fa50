// internal/infrastructure/backend/endpoints.go
package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/healthy-eats/storefront/internal/domain/cart"
	"github.com/healthy-eats/storefront/internal/domain/order"
	"github.com/healthy-eats/storefront/internal/domain/product"
	"github.com/healthy-eats/storefront/internal/domain/user"
)

// Me handles GET /auth/me. An empty or null body means nobody is logged in
// and yields (nil, nil).
func (c *Client) Me(ctx context.Context) (*user.User, error) {
	var u *user.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login handles POST /auth/login?email&password
func (c *Client) Login(ctx context.Context, email, password string) (*user.User, error) {
	return c.credentials(ctx, "/auth/login", email, password)
}

// Register handles POST /auth/register?email&password
func (c *Client) Register(ctx context.Context, email, password string) (*user.User, error) {
	return c.credentials(ctx, "/auth/register", email, password)
}

func (c *Client) credentials(ctx context.Context, path, email, password string) (*user.User, error) {
	var u user.User
	query := url.Values{"email": {email}, "password": {password}}
	if err := c.do(ctx, http.MethodPost, path, query, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout handles POST /auth/logout
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// GetCart handles GET /cart
func (c *Client) GetCart(ctx context.Context) (*cart.Cart, error) {
	return c.cart(ctx, http.MethodGet, "/cart", nil)
}

// AddCartItem handles POST /cart/items?productId&deltaQty
func (c *Client) AddCartItem(ctx context.Context, productID int64, deltaQty int) (*cart.Cart, error) {
	query := url.Values{
		"productId": {strconv.FormatInt(productID, 10)},
		"deltaQty":  {strconv.Itoa(deltaQty)},
	}
	return c.cart(ctx, http.MethodPost, "/cart/items", query)
}

// SetCartItemQuantity handles PUT /cart/items/{productId}?quantity
func (c *Client) SetCartItemQuantity(ctx context.Context, productID int64, quantity int) (*cart.Cart, error) {
	query := url.Values{"quantity": {strconv.Itoa(quantity)}}
	return c.cart(ctx, http.MethodPut, itemPath(productID), query)
}

// RemoveCartItem handles DELETE /cart/items/{productId}
func (c *Client) RemoveCartItem(ctx context.Context, productID int64) (*cart.Cart, error) {
	return c.cart(ctx, http.MethodDelete, itemPath(productID), nil)
}

// ClearCart handles DELETE /cart
func (c *Client) ClearCart(ctx context.Context) (*cart.Cart, error) {
	return c.cart(ctx, http.MethodDelete, "/cart", nil)
}

func itemPath(productID int64) string {
	return fmt.Sprintf("/cart/items/%d", productID)
}

func (c *Client) cart(ctx context.Context, method, path string, query url.Values) (*cart.Cart, error) {
	var result cart.Cart
	if err := c.do(ctx, method, path, query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Products handles GET /products
func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories handles GET /categories
func (c *Client) Categories(ctx context.Context) ([]product.Category, error) {
	var categories []product.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Orders handles GET /orders
func (c *Client) Orders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Checkout handles POST /checkout and returns the hosted payment page URL
func (c *Client) Checkout(ctx context.Context, req *order.CheckoutRequest) (*order.CheckoutSession, error) {
	var session order.CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout", nil, req, &session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, fmt.Errorf("backend POST /checkout returned no payment URL")
	}
	return &session, nil
}
