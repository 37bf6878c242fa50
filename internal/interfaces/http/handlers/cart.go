// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/domain/cart"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// cartKeepAlive is how often an idle event stream sends a comment
const cartKeepAlive = 25 * time.Second

// CartHandler handles cart pages, cart forms and the cart event stream.
// Mutation failures are logged and the visitor is sent back to the page
// they came from with the cart unchanged.
type CartHandler struct {
	logger logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(logger logrus.FieldLogger) *CartHandler {
	return &CartHandler{logger: logger}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	app := middleware.GetApp(c)
	if err := app.Cart.Refresh(c.Request.Context()); err != nil {
		requestLogger(c, h.logger).WithError(err).Warn("Failed to refresh cart")
	}

	render(c, http.StatusOK, "cart.html", "Cart", gin.H{
		"Cart": app.Cart.Cart(),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	log := requestLogger(c, h.logger)

	productID, err := strconv.ParseInt(c.PostForm("productId"), 10, 64)
	if err != nil {
		log.WithField("product_id", c.PostForm("productId")).Debug("Ignoring add with invalid product id")
		redirectBack(c, "/products")
		return
	}

	// A missing or unreadable delta adds one
	deltaQty, _ := strconv.Atoi(c.DefaultPostForm("deltaQty", "1"))

	if err := middleware.GetApp(c).Cart.Add(c.Request.Context(), productID, deltaQty); err != nil {
		log.WithError(err).WithField("product_id", productID).Warn("Failed to add item to cart")
	}
	redirectBack(c, "/products")
}

// UpdateQuantity handles POST /cart/items/:productId/quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	log := requestLogger(c, h.logger)

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	quantity, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil {
		log.WithField("quantity", c.PostForm("quantity")).Debug("Ignoring invalid quantity")
		redirectBack(c, "/cart")
		return
	}

	if err := middleware.GetApp(c).Cart.SetQuantity(c.Request.Context(), productID, quantity); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"product_id": productID,
			"quantity":   quantity,
		}).Warn("Failed to update cart quantity")
	}
	redirectBack(c, "/cart")
}

// RemoveFromCart handles POST /cart/items/:productId/remove
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if err := middleware.GetApp(c).Cart.Remove(c.Request.Context(), productID); err != nil {
		requestLogger(c, h.logger).WithError(err).WithField("product_id", productID).Warn("Failed to remove cart item")
	}
	redirectBack(c, "/cart")
}

// CartEvents handles GET /events/cart. It sends the current item count right
// away and again whenever the visitor's cart changes.
func (h *CartHandler) CartEvents(c *gin.Context) {
	app := middleware.GetApp(c)

	changed := make(chan struct{}, 1)
	unsubscribe := app.Cart.Subscribe(func(*cart.Cart) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	keepAlive := time.NewTicker(cartKeepAlive)
	defer keepAlive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	first := true
	c.Stream(func(w io.Writer) bool {
		if first {
			first = false
			c.SSEvent("cart", gin.H{"itemsCount": app.Cart.ItemsCount()})
			return true
		}

		select {
		case <-c.Request.Context().Done():
			return false
		case <-changed:
			c.SSEvent("cart", gin.H{"itemsCount": app.Cart.ItemsCount()})
			return true
		case <-keepAlive.C:
			// An evicted App no longer sees cart changes; ending the stream
			// makes the browser reconnect to the live one
			if !middleware.TouchVisitor(c) {
				return false
			}
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
}
