// internal/domain/cart/entity.go
package cart

// Item is one product line of the server-held cart. Money is in cents.
type Item struct {
	ProductID      int64  `json:"productId"`
	Name           string `json:"name"`
	ImageURL       string `json:"imageUrl"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// Cart mirrors the session cart. Totals are computed by the server and
// trusted as-is: TotalCents = SubtotalCents + TaxCents.
type Cart struct {
	Items         []Item `json:"items"`
	SubtotalCents int64  `json:"subtotalCents"`
	TaxCents      int64  `json:"taxCents"`
	TotalCents    int64  `json:"totalCents"`
}

// ItemsCount returns the sum of all line quantities, 0 for a nil cart
func (c *Cart) ItemsCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart is absent or has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// QuantityOf returns the quantity of a product line, 0 if not in the cart
func (c *Cart) QuantityOf(productID int64) int {
	if c == nil {
		return 0
	}
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Clone returns a deep copy so readers never share the item slice
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = append([]Item(nil), c.Items...)
	return &clone
}

// ClampQuantity floors a requested quantity at zero
func ClampQuantity(quantity int) int {
	if quantity < 0 {
		return 0
	}
	return quantity
}
