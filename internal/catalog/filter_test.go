package catalog

import (
	"testing"

	"github.com/healthy-eats/storefront/internal/domain/product"
	"github.com/stretchr/testify/assert"
)

var fruit = []product.Product{
	{ID: 1, Name: "Red Apple", CategoryID: 1},
	{ID: 2, Name: "Green Apple", CategoryID: 2},
	{ID: 3, Name: "Banana", CategoryID: 1},
}

func names(products []product.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func int64Ptr(v int64) *int64 { return &v }

func TestFilterByQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"prefix of second word", "ap", []string{"Red Apple", "Green Apple"}},
		{"empty returns all", "", []string{"Red Apple", "Green Apple", "Banana"}},
		{"whitespace returns all", "   ", []string{"Red Apple", "Green Apple", "Banana"}},
		{"no match", "xyz", []string{}},
		{"case and padding ignored", "  BAN ", []string{"Banana"}},
		{"infix does not match", "pple", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Filter(fruit, nil, tt.query)))
		})
	}
}

func TestFilterComposesCategoryAndQuery(t *testing.T) {
	assert.Equal(t, []string{"Red Apple", "Banana"}, names(Filter(fruit, int64Ptr(1), "")))
	assert.Equal(t, []string{"Red Apple"}, names(Filter(fruit, int64Ptr(1), "ap")))
	assert.Equal(t, []string{}, names(Filter(fruit, int64Ptr(2), "ban")))
	assert.Equal(t, []string{}, names(Filter(fruit, int64Ptr(42), "")))
}

func TestAnchor(t *testing.T) {
	assert.Equal(t, "product-red-apple", Anchor(fruit[0]))
}
