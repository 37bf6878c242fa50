// internal/domain/product/entity.go
package product

// Product is a read-only catalog entry as served by GET /products
type Product struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	ImageURL   string `json:"imageUrl"`
	CategoryID int64  `json:"categoryId"`
	Unit       string `json:"unit"`
}

// Category groups products on the catalog page
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
