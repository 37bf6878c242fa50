// Package catalog holds the catalog page's filtering rules.
package catalog

import (
	"strings"

	"github.com/gosimple/slug"
	"github.com/healthy-eats/storefront/internal/domain/product"
)

// Filter returns the products matching both the category and the query, in
// source order. A nil categoryID means "all categories".
func Filter(products []product.Product, categoryID *int64, query string) []product.Product {
	displayed := make([]product.Product, 0, len(products))
	for _, p := range products {
		if MatchesCategory(p, categoryID) && MatchesQuery(p.Name, query) {
			displayed = append(displayed, p)
		}
	}
	return displayed
}

// MatchesCategory reports whether p belongs to the selected category
func MatchesCategory(p product.Product, categoryID *int64) bool {
	return categoryID == nil || p.CategoryID == *categoryID
}

// MatchesQuery reports whether any space-separated word of name starts with
// the trimmed, lower-cased query. A blank query matches everything.
func MatchesQuery(name, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, word := range strings.Split(strings.ToLower(name), " ") {
		if strings.HasPrefix(word, q) {
			return true
		}
	}
	return false
}

// Anchor is the fragment id of a product card on the catalog page
func Anchor(p product.Product) string {
	return "product-" + slug.Make(p.Name)
}
