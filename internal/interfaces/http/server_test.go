package http_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/domain/contact"
	"github.com/healthy-eats/storefront/internal/domain/order"
	"github.com/healthy-eats/storefront/internal/infrastructure/backend/backendtest"
	storeredis "github.com/healthy-eats/storefront/internal/infrastructure/database/redis"
	storehttp "github.com/healthy-eats/storefront/internal/interfaces/http"
	"github.com/healthy-eats/storefront/internal/pkg/auth"
	"github.com/healthy-eats/storefront/internal/pkg/logger"
	"github.com/healthy-eats/storefront/internal/visitor"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockContacts for testing
type MockContacts struct {
	mock.Mock
}

func (m *MockContacts) Submit(ctx context.Context, form contact.Form) (*contact.Message, error) {
	args := m.Called(ctx, form)
	msg, _ := args.Get(0).(*contact.Message)
	return msg, args.Error(1)
}

type fakeReceipts struct {
	err error
}

func (f fakeReceipts) GenerateReceipt(o order.Order) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-receipt"), nil
}

type checkFunc func(ctx context.Context) error

func (f checkFunc) Health(ctx context.Context) error { return f(ctx) }

type harness struct {
	t        *testing.T
	backend  *backendtest.Server
	server   *httptest.Server
	client   *http.Client
	contacts *MockContacts
}

func newHarness(t *testing.T, opts ...func(*storehttp.Dependencies)) *harness {
	t.Helper()

	srv := backendtest.NewServer()
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		App:     config.AppConfig{Name: "Healthy Eats Storefront", Version: "test", Environment: "test"},
		Server:  config.ServerConfig{RequestTimeout: 5 * time.Second},
		Backend: config.BackendConfig{BaseURL: srv.BaseURL()},
		JWT: config.JWTConfig{
			Secret:        "0123456789abcdef0123456789abcdef",
			VisitorExpiry: time.Hour,
		},
		Visitor: config.VisitorConfig{
			CookieName:  "he_visitor",
			IdleTTL:     30 * time.Minute,
			SweepEvery:  time.Minute,
			StartupWait: 2 * time.Second,
		},
		Company: config.CompanyConfig{Email: "support@healthyeats.example"},
	}

	redisClient := storeredis.NewFromClient(rdb)
	contacts := new(MockContacts)

	deps := storehttp.Dependencies{
		Logger:   logger.Discard(),
		Redis:    rdb,
		Visitors: visitor.NewRegistry(cfg, storeredis.NewCookieStore(redisClient, time.Hour), logger.Discard()),
		JWT:      auth.NewJWTManager(cfg),
		Contacts: contacts,
		Receipts: fakeReceipts{},
		Checks:   map[string]storehttp.HealthChecker{"redis": redisClient},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	s, err := storehttp.NewServer(cfg, deps)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		t:       t,
		backend: srv,
		server:  ts,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		contacts: contacts,
	}
}

type page struct {
	status   int
	location string
	header   http.Header
	body     string
}

func (h *harness) get(path string) page {
	h.t.Helper()
	resp, err := h.client.Get(h.server.URL + path)
	require.NoError(h.t, err)
	return read(h.t, resp)
}

func (h *harness) post(path string, form url.Values) page {
	h.t.Helper()
	resp, err := h.client.PostForm(h.server.URL+path, form)
	require.NoError(h.t, err)
	return read(h.t, resp)
}

func read(t *testing.T, resp *http.Response) page {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		header:   resp.Header,
		body:     string(body),
	}
}

func (h *harness) login(email, password string) {
	h.t.Helper()
	h.backend.AddAccount(email, password)
	p := h.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(h.t, http.StatusSeeOther, p.status)
}

func (h *harness) addToCart(productID string, qty string) {
	h.t.Helper()
	p := h.post("/cart/items", url.Values{"productId": {productID}, "deltaQty": {qty}})
	require.Equal(h.t, http.StatusSeeOther, p.status)
}

func countRequests(requests []string, prefix string) int {
	n := 0
	for _, r := range requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func TestGuardRedirectsAndLoginReturns(t *testing.T) {
	h := newHarness(t)
	h.backend.AddAccount("ada@example.com", "secret")

	p := h.get("/checkout")
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/login?from=%2Fcheckout", p.location)

	p = h.get(p.location)
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, `name="from" value="/checkout"`)

	p = h.post("/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"secret"},
		"from":     {"/checkout"},
	})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/checkout", p.location)

	p = h.get("/checkout")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Your cart is empty.")
}

func TestLoginRejectsForeignReturnPath(t *testing.T) {
	h := newHarness(t)
	h.backend.AddAccount("ada@example.com", "secret")

	p := h.post("/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"secret"},
		"from":     {"//evil.example/phish"},
	})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/products", p.location)

	for _, from := range []string{"/\t/evil.example", "/\n/evil.example", "/\\evil.example"} {
		p = h.post("/login", url.Values{
			"email":    {"ada@example.com"},
			"password": {"secret"},
			"from":     {from},
		})
		assert.Equal(t, http.StatusSeeOther, p.status, "%q", from)
		assert.Equal(t, "/products", p.location, "%q", from)
	}

	p = h.get("/login?from=/%09/evil.example")
	assert.Contains(t, p.body, `name="from" value="/products"`)
}

func TestLoginFailureShowsGenericError(t *testing.T) {
	h := newHarness(t)
	h.backend.AddAccount("ada@example.com", "secret")

	p := h.post("/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, p.status)
	assert.Contains(t, p.body, "Invalid credentials or server error.")
	assert.Contains(t, p.body, `href="/login"`, "still anonymous")
}

func TestRegisterChecksConfirmationLocally(t *testing.T) {
	h := newHarness(t)

	p := h.post("/register", url.Values{
		"email":    {"new@example.com"},
		"password": {"one"},
		"confirm":  {"two"},
	})
	assert.Equal(t, http.StatusBadRequest, p.status)
	assert.Contains(t, p.body, "Passwords do not match.")
	assert.Zero(t, countRequests(h.backend.Requests(), "POST /auth/register"))

	p = h.post("/register", url.Values{
		"email":    {"new@example.com"},
		"password": {"one"},
		"confirm":  {"one"},
	})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/products", p.location)

	p = h.get("/profile")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "new@example.com")
}

func TestRegisterFailureShowsGenericError(t *testing.T) {
	h := newHarness(t)
	h.backend.AddAccount("taken@example.com", "x")

	p := h.post("/register", url.Values{
		"email":    {"taken@example.com"},
		"password": {"one"},
		"confirm":  {"one"},
	})
	assert.Equal(t, http.StatusBadRequest, p.status)
	assert.Contains(t, p.body, "Registration failed. Try another email.")
}

func TestCatalogFiltering(t *testing.T) {
	h := newHarness(t)

	p := h.get("/products?q=ap")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Red Apple")
	assert.Contains(t, p.body, "Green Apple")
	assert.NotContains(t, p.body, "Banana")
	assert.Contains(t, p.body, "€1.20")

	p = h.get("/products?category=2")
	assert.Contains(t, p.body, "Kale Bunch")
	assert.NotContains(t, p.body, "Red Apple")

	p = h.get("/products?category=1&q=zzz")
	assert.Contains(t, p.body, "No products found.")
}

func TestCatalogSurvivesBackendFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.Fail(http.MethodGet, "/products", http.StatusInternalServerError)

	p := h.get("/products")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "No products found.")
	assert.Contains(t, p.body, "Vegetables", "categories still load")
}

func TestAddToCartReturnsToProductCard(t *testing.T) {
	h := newHarness(t)

	p := h.post("/cart/items", url.Values{
		"productId": {"1"},
		"deltaQty":  {"2"},
		"return":    {"/products?q=ap#product-red-apple"},
	})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/products?q=ap#product-red-apple", p.location)

	p = h.get("/cart")
	assert.Contains(t, p.body, "Red Apple")
	assert.Contains(t, p.body, `id="cart-badge" class="badge">2</span>`)
	assert.Contains(t, p.body, "€2.40")

	p = h.post("/cart/items", url.Values{"productId": {"1"}, "return": {"https://evil.example"}})
	assert.Equal(t, "/products", p.location)

	p = h.post("/cart/items", url.Values{"productId": {"1"}, "return": {"/\t/evil.example"}})
	assert.Equal(t, "/products", p.location)
}

func TestCartQuantityAndRemove(t *testing.T) {
	h := newHarness(t)
	h.addToCart("7", "2")

	p := h.post("/cart/items/7/quantity", url.Values{"quantity": {"0"}, "return": {"/cart"}})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/cart", p.location)
	assert.Contains(t, h.get("/cart").body, "Your cart is empty.")

	h.addToCart("3", "1")
	p = h.post("/cart/items/3/quantity", url.Values{"quantity": {"-4"}})
	assert.Equal(t, "/cart", p.location)
	assert.Contains(t, h.backend.Requests(), "PUT /cart/items/3?quantity=0")

	h.addToCart("3", "1")
	h.post("/cart/items/3/remove", nil)
	assert.Contains(t, h.backend.Requests(), "DELETE /cart/items/3")
	assert.Contains(t, h.get("/cart").body, "Your cart is empty.")
}

func TestCheckoutHandsOffToPaymentPage(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.com", "secret")
	h.addToCart("1", "2")
	h.addToCart("7", "1")

	p := h.post("/checkout", url.Values{
		"fullName": {"Ada Lovelace"},
		"street":   {"1 Analytical Way"},
		"city":     {"London"},
		"zip":      {"N1 9GU"},
		"country":  {"UK"},
	})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, h.backend.CheckoutURL, p.location)

	sent := h.backend.LastCheckout()
	require.NotNil(t, sent)
	assert.Equal(t, []order.CheckoutItem{
		{Name: "Red Apple", PriceCents: 120, Quantity: 2},
		{Name: "Kale Bunch", PriceCents: 250, Quantity: 1},
	}, sent.Items)
	assert.Equal(t, order.Address{
		FullName: "Ada Lovelace",
		Street:   "1 Analytical Way",
		City:     "London",
		Zip:      "N1 9GU",
		Country:  "UK",
	}, sent.Address)
}

func TestCheckoutWithEmptyCartGoesToCart(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.com", "secret")

	p := h.post("/checkout", url.Values{
		"fullName": {"Ada"}, "street": {"s"}, "city": {"c"}, "zip": {"z"}, "country": {"k"},
	})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/cart", p.location)
	assert.Nil(t, h.backend.LastCheckout())
}

func TestCheckoutRequiresFullAddress(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.com", "secret")
	h.addToCart("1", "1")

	p := h.post("/checkout", url.Values{"fullName": {"Ada"}})
	assert.Equal(t, http.StatusBadRequest, p.status)
	assert.Contains(t, p.body, "Please fill in every address field.")
	assert.Nil(t, h.backend.LastCheckout())
}

func TestCheckoutFailureReturnsToCheckout(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.com", "secret")
	h.addToCart("1", "1")
	h.backend.Fail(http.MethodPost, "/checkout", http.StatusBadGateway)

	p := h.post("/checkout", url.Values{
		"fullName": {"Ada"}, "street": {"s"}, "city": {"c"}, "zip": {"z"}, "country": {"k"},
	})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/checkout", p.location)
}

func TestSuccessClearsCart(t *testing.T) {
	h := newHarness(t)
	h.addToCart("1", "3")

	p := h.get("/success")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Payment Successful")
	assert.Contains(t, h.backend.Requests(), "DELETE /cart")
	assert.Contains(t, p.body, `class="badge" hidden`)

	p = h.get("/cancel")
	assert.Contains(t, p.body, "Payment Failed")
}

func TestLogoutReturnsToCatalog(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.com", "secret")

	p := h.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/products", p.location)

	p = h.get("/profile")
	assert.Equal(t, http.StatusFound, p.status)
}

func TestFailedLogoutKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.com", "secret")
	h.backend.Fail(http.MethodPost, "/auth/logout", http.StatusInternalServerError)

	p := h.post("/logout", nil)
	assert.Equal(t, "/products", p.location)
	assert.Equal(t, http.StatusOK, h.get("/profile").status)
}

func TestProfileOrdersNewestFirst(t *testing.T) {
	h := newHarness(t)
	h.backend.Orders["ada@example.com"] = []order.Order{
		{ID: 1, Paid: true, CreatedAt: "2024-01-01T10:00:00", Items: []order.Item{{Name: "Banana", Quantity: 2, PriceCents: 90}}},
		{ID: 2, Paid: false, CreatedAt: "2024-02-01T10:00:00", Items: []order.Item{{Name: "Kale Bunch", Quantity: 1, PriceCents: 250}}},
	}
	h.login("ada@example.com", "secret")

	p := h.get("/profile?tab=orders")
	require.Equal(t, http.StatusOK, p.status)

	newest := strings.Index(p.body, "Order #2")
	oldest := strings.Index(p.body, "Order #1")
	require.NotEqual(t, -1, newest)
	require.NotEqual(t, -1, oldest)
	assert.Less(t, newest, oldest)
	assert.Contains(t, p.body, "Unpaid")
	assert.Contains(t, p.body, "Total: €1.80")
	assert.Contains(t, p.body, "/profile/orders/2/receipt.pdf")
}

func TestAccountTabFallsBackWhenBackendFails(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.com", "secret")

	p := h.get("/profile?tab=account")
	assert.Contains(t, p.body, "ada@example.com")

	h.backend.Fail(http.MethodGet, "/auth/me", http.StatusInternalServerError)
	p = h.get("/profile?tab=account")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "You are not logged in.")
}

func TestReceiptDownload(t *testing.T) {
	h := newHarness(t)
	h.backend.Orders["ada@example.com"] = []order.Order{
		{ID: 2, Paid: true, CreatedAt: "2024-02-01T10:00:00", Items: []order.Item{{Name: "Kale Bunch", Quantity: 1, PriceCents: 250}}},
	}
	h.login("ada@example.com", "secret")

	p := h.get("/profile/orders/2/receipt.pdf")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Equal(t, "application/pdf", p.header.Get("Content-Type"))
	assert.Contains(t, p.header.Get("Content-Disposition"), "receipt-2.pdf")
	assert.Equal(t, "%PDF-receipt", p.body)

	assert.Equal(t, http.StatusNotFound, h.get("/profile/orders/9/receipt.pdf").status)
	assert.Equal(t, http.StatusBadRequest, h.get("/profile/orders/abc/receipt.pdf").status)
}

func TestReceiptGenerationFailure(t *testing.T) {
	h := newHarness(t, func(d *storehttp.Dependencies) {
		d.Receipts = fakeReceipts{err: errors.New("wkhtmltopdf not found")}
	})
	h.backend.Orders["ada@example.com"] = []order.Order{{ID: 2}}
	h.login("ada@example.com", "secret")

	assert.Equal(t, http.StatusInternalServerError, h.get("/profile/orders/2/receipt.pdf").status)
}

func TestContactAlwaysLandsOnSuccess(t *testing.T) {
	h := newHarness(t)
	h.contacts.On("Submit", mock.Anything, contact.Form{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: "Hello",
	}).Return(nil, errors.New("db down"))

	p := h.get("/contact")
	assert.Contains(t, p.body, "support@healthyeats.example")

	p = h.post("/contact", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"Hello"}})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/contact-success", p.location)
	h.contacts.AssertExpectations(t)

	p = h.get("/contact-success")
	assert.Contains(t, p.body, "Message Sent")
}

func TestCartEventsStreamItemCount(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	resp, err := h.client.Get(h.server.URL + "/events/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if strings.HasPrefix(scanner.Text(), "data:") {
				lines <- scanner.Text()
			}
		}
		close(lines)
	}()

	next := func() string {
		t.Helper()
		select {
		case line := <-lines:
			return line
		case <-time.After(2 * time.Second):
			t.Fatal("no cart event")
			return ""
		}
	}

	assert.Contains(t, next(), `"itemsCount":0`)

	h.addToCart("1", "2")
	assert.Contains(t, next(), `"itemsCount":2`)
}

func TestHealthAndReadiness(t *testing.T) {
	h := newHarness(t)
	p := h.get("/health")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, `"status":"healthy"`)

	p = h.get("/ready")
	assert.Equal(t, http.StatusOK, p.status)

	down := newHarness(t, func(d *storehttp.Dependencies) {
		d.Checks = map[string]storehttp.HealthChecker{
			"database": checkFunc(func(context.Context) error { return errors.New("refused") }),
		}
	})
	p = down.get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, p.status)
	assert.Contains(t, p.body, "database unavailable")
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	h := newHarness(t)
	p := h.get("/nope")
	assert.Equal(t, http.StatusNotFound, p.status)
	assert.Contains(t, p.body, "Page not found")

	p = h.get("/static/app.js")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "EventSource")
}

func TestVisitorsDoNotShareCarts(t *testing.T) {
	a := newHarness(t)
	a.addToCart("1", "2")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := *a
	other.client = &http.Client{Jar: jar, CheckRedirect: a.client.CheckRedirect}

	assert.Contains(t, other.get("/cart").body, "Your cart is empty.")
	assert.Contains(t, a.get("/cart").body, "Red Apple")
}
