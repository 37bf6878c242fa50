// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/healthy-eats/storefront/internal/domain/cart"
	"github.com/healthy-eats/storefront/internal/pkg/money"
)

// ErrEmptyCheckout is returned when a checkout request carries no items
var ErrEmptyCheckout = errors.New("checkout has no items")

// Address is the shipping address entered at checkout
type Address struct {
	FullName string `json:"fullName" form:"fullName"`
	Street   string `json:"street" form:"street"`
	City     string `json:"city" form:"city"`
	Zip      string `json:"zip" form:"zip"`
	Country  string `json:"country" form:"country"`
}

// Validate requires every field to be non-blank
func (a Address) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"fullName", a.FullName},
		{"street", a.Street},
		{"city", a.City},
		{"zip", a.Zip},
		{"country", a.Country},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("address is missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Item is one purchased line of a historical order
type Item struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

// LineTotalCents is price times quantity
func (i Item) LineTotalCents() int64 {
	return money.Times(i.PriceCents, i.Quantity)
}

// Order is a read-only historical order from GET /orders
type Order struct {
	ID        int64   `json:"id"`
	Paid      bool    `json:"paid"`
	CreatedAt string  `json:"createdAt"`
	Address   Address `json:"address"`
	Items     []Item  `json:"items"`
}

// createdAt comes from the server as an ISO string, with or without a zone
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// CreatedTime parses CreatedAt, returning the zero time if it cannot be read
func (o Order) CreatedTime() time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, o.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// TotalCents sums the order lines
func (o Order) TotalCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.LineTotalCents()
	}
	return total
}

// SortNewestFirst returns a copy of orders ordered by creation time, newest first
func SortNewestFirst(orders []Order) []Order {
	sorted := append([]Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedTime().After(sorted[j].CreatedTime())
	})
	return sorted
}

// CheckoutItem is the line shape POST /checkout expects
type CheckoutItem struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
}

// CheckoutRequest is the body of POST /checkout
type CheckoutRequest struct {
	Items   []CheckoutItem `json:"items"`
	Address Address        `json:"address"`
}

// CheckoutSession is the response of POST /checkout: where to send the browser
type CheckoutSession struct {
	URL string `json:"url"`
}

// NewCheckoutRequest gathers the cart lines and the shipping address
func NewCheckoutRequest(c *cart.Cart, address Address) (*CheckoutRequest, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCheckout
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	items := make([]CheckoutItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, CheckoutItem{
			Name:       line.Name,
			PriceCents: line.UnitPriceCents,
			Quantity:   line.Quantity,
		})
	}

	return &CheckoutRequest{Items: items, Address: address}, nil
}
