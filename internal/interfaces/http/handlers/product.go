// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/catalog"
	"github.com/healthy-eats/storefront/internal/domain/product"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ProductHandler serves the catalog page
type ProductHandler struct {
	logger logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(logger logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{logger: logger}
}

// ListProducts handles GET /products?category=<id>&q=<text>
func (h *ProductHandler) ListProducts(c *gin.Context) {
	app := middleware.GetApp(c)
	log := requestLogger(c, h.logger)
	ctx := c.Request.Context()

	var (
		products   []product.Product
		categories []product.Category
		g          errgroup.Group
	)

	// Either list failing leaves the page with an empty list, never an error
	g.Go(func() error {
		var err error
		if products, err = app.API.Products(ctx); err != nil {
			log.WithError(err).Warn("Failed to fetch products")
			products = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = app.API.Categories(ctx); err != nil {
			log.WithError(err).Warn("Failed to fetch categories")
			categories = nil
		}
		return nil
	})
	_ = g.Wait()

	selected := parseCategory(c.Query("category"))
	query := c.Query("q")

	render(c, http.StatusOK, "products.html", "Catalog", gin.H{
		"Products":   catalog.Filter(products, selected, query),
		"Categories": categories,
		"Selected":   selected,
		"Query":      query,
		"Cart":       app.Cart.Cart(),
		"ReturnPath": c.Request.URL.RequestURI(),
	})
}

// parseCategory reads the category filter; anything but an id means "All"
func parseCategory(raw string) *int64 {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
