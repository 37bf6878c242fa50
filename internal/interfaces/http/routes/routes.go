// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/interfaces/http/handlers"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// Dependencies are what the page handlers need beyond the visitor's App
type Dependencies struct {
	Config   *config.Config
	Logger   logrus.FieldLogger
	Contacts handlers.ContactSubmitter
	Receipts handlers.ReceiptRenderer
}

// SetupPageRoutes sets up the informational pages
func SetupPageRoutes(rg *gin.RouterGroup, deps Dependencies) {
	pageHandler := handlers.NewPageHandler(deps.Config)

	rg.GET("/", pageHandler.Home)
	rg.GET("/about", pageHandler.About)
}

// SetupCatalogRoutes sets up the catalog page
func SetupCatalogRoutes(rg *gin.RouterGroup, deps Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Logger)

	rg.GET("/products", productHandler.ListProducts)
}

// SetupCartRoutes sets up the cart page and cart forms
func SetupCartRoutes(rg *gin.RouterGroup, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.Logger)

	rg.GET("/cart", cartHandler.GetCart)

	items := rg.Group("/cart/items")
	{
		items.POST("", cartHandler.AddToCart)
		items.POST("/:productId/quantity", cartHandler.UpdateQuantity)
		items.POST("/:productId/remove", cartHandler.RemoveFromCart)
	}
}

// SetupAuthRoutes sets up the login page and session forms
func SetupAuthRoutes(rg *gin.RouterGroup, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Logger)

	rg.GET("/login", authHandler.ShowLogin)
	rg.POST("/login", authHandler.Login)
	rg.POST("/register", authHandler.Register)
	rg.POST("/logout", authHandler.Logout)
}

// SetupCheckoutRoutes sets up checkout and the payment return pages
func SetupCheckoutRoutes(rg *gin.RouterGroup, deps Dependencies) {
	checkoutHandler := handlers.NewCheckoutHandler(deps.Logger)
	pageHandler := handlers.NewPageHandler(deps.Config)

	// Payment return pages are reachable without a session
	rg.GET("/success", checkoutHandler.Success)
	rg.GET("/cancel", pageHandler.Cancel)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.RequireSession())
	{
		checkout.GET("", checkoutHandler.ShowCheckout)
		checkout.POST("", checkoutHandler.CreateCheckout)
	}
}

// SetupProfileRoutes sets up the profile tabs and receipt downloads
func SetupProfileRoutes(rg *gin.RouterGroup, deps Dependencies) {
	profileHandler := handlers.NewProfileHandler(deps.Logger)
	receiptHandler := handlers.NewReceiptHandler(deps.Receipts, deps.Logger)

	profile := rg.Group("/profile")
	profile.Use(middleware.RequireSession())
	{
		profile.GET("", profileHandler.GetProfile)
		profile.GET("/orders/:id/receipt.pdf", receiptHandler.DownloadReceipt)
	}
}

// SetupContactRoutes sets up the contact form
func SetupContactRoutes(rg *gin.RouterGroup, deps Dependencies) {
	contactHandler := handlers.NewContactHandler(deps.Contacts, deps.Config, deps.Logger)

	rg.GET("/contact", contactHandler.ShowContact)
	rg.POST("/contact", contactHandler.SubmitContact)
	rg.GET("/contact-success", contactHandler.ContactSuccess)
}

// SetupEventRoutes sets up the long-lived event streams. They must not sit
// behind a request timeout.
func SetupEventRoutes(rg *gin.RouterGroup, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.Logger)

	rg.GET("/events/cart", cartHandler.CartEvents)
}

// SetupRoutes consolidates all page routes into the pages group and the
// event streams into the events group
func SetupRoutes(pages, events *gin.RouterGroup, deps Dependencies) {
	SetupPageRoutes(pages, deps)
	SetupCatalogRoutes(pages, deps)
	SetupCartRoutes(pages, deps)
	SetupAuthRoutes(pages, deps)
	SetupCheckoutRoutes(pages, deps)
	SetupProfileRoutes(pages, deps)
	SetupContactRoutes(pages, deps)

	SetupEventRoutes(events, deps)
}
