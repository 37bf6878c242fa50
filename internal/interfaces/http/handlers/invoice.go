// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/domain/order"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/healthy-eats/storefront/internal/pkg/pdf"
	"github.com/sirupsen/logrus"
)

// ReceiptRenderer turns an order into a PDF
type ReceiptRenderer interface {
	GenerateReceipt(o order.Order) ([]byte, error)
}

// ReceiptHandler handles order receipt downloads
type ReceiptHandler struct {
	receipts ReceiptRenderer
	logger   logrus.FieldLogger
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receipts ReceiptRenderer, logger logrus.FieldLogger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts: receipts,
		logger:   logger,
	}
}

// DownloadReceipt handles GET /profile/orders/:id/receipt.pdf. Only orders the
// backend lists for the current session can be downloaded.
func (h *ReceiptHandler) DownloadReceipt(c *gin.Context) {
	log := requestLogger(c, h.logger)

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid order ID")
		return
	}

	orders, err := middleware.GetApp(c).API.Orders(c.Request.Context())
	if err != nil {
		log.WithError(err).Warn("Failed to fetch orders for receipt")
		c.String(http.StatusBadGateway, "Orders are unavailable right now")
		return
	}

	var found *order.Order
	for i := range orders {
		if orders[i].ID == orderID {
			found = &orders[i]
			break
		}
	}
	if found == nil {
		c.String(http.StatusNotFound, "Order not found")
		return
	}

	receipt, err := h.receipts.GenerateReceipt(*found)
	if err != nil {
		log.WithError(err).WithField("order_id", orderID).Error("Failed to generate receipt")
		c.String(http.StatusInternalServerError, "Failed to generate receipt")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", pdf.ReceiptFilename(*found)))
	c.Data(http.StatusOK, "application/pdf", receipt)
}
