// internal/state/backend.go
package state

import (
	"context"

	"github.com/healthy-eats/storefront/internal/domain/cart"
	"github.com/healthy-eats/storefront/internal/domain/order"
	"github.com/healthy-eats/storefront/internal/domain/product"
	"github.com/healthy-eats/storefront/internal/domain/user"
)

// SessionAPI is the slice of the backend the session store calls
type SessionAPI interface {
	Me(ctx context.Context) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, error)
	Register(ctx context.Context, email, password string) (*user.User, error)
	Logout(ctx context.Context) error
}

// CartAPI is the slice of the backend the cart store calls
type CartAPI interface {
	GetCart(ctx context.Context) (*cart.Cart, error)
	AddCartItem(ctx context.Context, productID int64, deltaQty int) (*cart.Cart, error)
	SetCartItemQuantity(ctx context.Context, productID int64, quantity int) (*cart.Cart, error)
	RemoveCartItem(ctx context.Context, productID int64) (*cart.Cart, error)
	ClearCart(ctx context.Context) (*cart.Cart, error)
}

// CatalogAPI serves the read-only catalog lists
type CatalogAPI interface {
	Products(ctx context.Context) ([]product.Product, error)
	Categories(ctx context.Context) ([]product.Category, error)
}

// OrderAPI serves order history and checkout
type OrderAPI interface {
	Orders(ctx context.Context) ([]order.Order, error)
	Checkout(ctx context.Context, req *order.CheckoutRequest) (*order.CheckoutSession, error)
}

// Backend is everything pages may ask of the server
type Backend interface {
	SessionAPI
	CartAPI
	CatalogAPI
	OrderAPI
}
