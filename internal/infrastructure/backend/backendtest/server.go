// Package backendtest provides an in-process fake of the Healthy Eats API
// for tests. It keeps carts per session cookie and computes totals the way
// the real server does.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/healthy-eats/storefront/internal/domain/cart"
	"github.com/healthy-eats/storefront/internal/domain/order"
	"github.com/healthy-eats/storefront/internal/domain/product"
	"github.com/healthy-eats/storefront/internal/domain/user"
	"github.com/healthy-eats/storefront/internal/pkg/money"
)

// SessionCookie is the cookie name the fake issues
const SessionCookie = "JSESSIONID"

type account struct {
	user     user.User
	password string
}

type session struct {
	email string
	lines []line
}

type line struct {
	productID int64
	quantity  int
}

// Server is the fake backend. Exported fields may be changed between requests.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	Products    []product.Product
	Categories  []product.Category
	Orders      map[string][]order.Order
	CheckoutURL string
	TaxPercent  int64

	accounts     map[string]*account
	sessions     map[string]*session
	failures     map[string]int
	requests     []string
	lastCheckout *order.CheckoutRequest
	nextUserID   int64
}

// NewServer starts a fake backend with a small default catalog
func NewServer() *Server {
	s := &Server{
		Products: []product.Product{
			{ID: 1, Name: "Red Apple", PriceCents: 120, ImageURL: "/images/red-apple.jpg", CategoryID: 1, Unit: "kg"},
			{ID: 2, Name: "Green Apple", PriceCents: 110, ImageURL: "/images/green-apple.jpg", CategoryID: 1, Unit: "kg"},
			{ID: 3, Name: "Banana", PriceCents: 90, ImageURL: "/images/banana.jpg", CategoryID: 1, Unit: "kg"},
			{ID: 7, Name: "Kale Bunch", PriceCents: 250, ImageURL: "/images/kale.jpg", CategoryID: 2, Unit: "pc"},
		},
		Categories: []product.Category{
			{ID: 1, Name: "Fruit"},
			{ID: 2, Name: "Vegetables"},
		},
		Orders:      make(map[string][]order.Order),
		CheckoutURL: "https://pay.example/session/cs_test_123",
		accounts:    make(map[string]*account),
		sessions:    make(map[string]*session),
		failures:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// BaseURL is the address to hand to backend.New
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// AddAccount registers a user directly
func (s *Server) AddAccount(email, password string) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccountLocked(email, password)
}

func (s *Server) addAccountLocked(email, password string) user.User {
	s.nextUserID++
	u := user.User{ID: s.nextUserID, Email: email, CreatedAt: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

// Fail makes every request matching method and path answer with status
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Recover clears all injected failures
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
}

// Requests returns "METHOD path?query" for every request seen
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// LastCheckout returns the most recent POST /checkout body
func (s *Server) LastCheckout() *order.CheckoutRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCheckout
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	entry := r.Method + " " + path
	if r.URL.RawQuery != "" {
		entry += "?" + r.URL.RawQuery
	}
	s.requests = append(s.requests, entry)

	if status, ok := s.failures[r.Method+" "+path]; ok {
		http.Error(w, `{"error":"injected failure"}`, status)
		return
	}

	sess := s.session(w, r)

	switch {
	case r.Method == http.MethodGet && path == "/auth/me":
		if acc := s.accounts[sess.email]; acc != nil {
			writeJSON(w, acc.user)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && path == "/auth/login":
		acc := s.accounts[r.URL.Query().Get("email")]
		if acc == nil || acc.password != r.URL.Query().Get("password") {
			http.Error(w, `{"error":"bad credentials"}`, http.StatusUnauthorized)
			return
		}
		sess.email = acc.user.Email
		writeJSON(w, acc.user)
	case r.Method == http.MethodPost && path == "/auth/register":
		email := r.URL.Query().Get("email")
		if email == "" || s.accounts[email] != nil {
			http.Error(w, `{"error":"email taken"}`, http.StatusConflict)
			return
		}
		u := s.addAccountLocked(email, r.URL.Query().Get("password"))
		sess.email = email
		writeJSON(w, u)
	case r.Method == http.MethodPost && path == "/auth/logout":
		sess.email = ""
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && path == "/cart":
		writeJSON(w, s.cartOf(sess))
	case r.Method == http.MethodDelete && path == "/cart":
		sess.lines = nil
		writeJSON(w, s.cartOf(sess))
	case r.Method == http.MethodPost && path == "/cart/items":
		id, _ := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
		delta, _ := strconv.Atoi(r.URL.Query().Get("deltaQty"))
		if s.product(id) == nil {
			http.Error(w, `{"error":"unknown product"}`, http.StatusNotFound)
			return
		}
		sess.setQuantity(id, sess.quantity(id)+delta)
		writeJSON(w, s.cartOf(sess))
	case strings.HasPrefix(path, "/cart/items/") && (r.Method == http.MethodPut || r.Method == http.MethodDelete):
		id, err := strconv.ParseInt(strings.TrimPrefix(path, "/cart/items/"), 10, 64)
		if err != nil {
			http.Error(w, `{"error":"bad id"}`, http.StatusBadRequest)
			return
		}
		quantity := 0
		if r.Method == http.MethodPut {
			quantity, err = strconv.Atoi(r.URL.Query().Get("quantity"))
			if err != nil || quantity < 0 {
				http.Error(w, `{"error":"bad quantity"}`, http.StatusBadRequest)
				return
			}
		}
		sess.setQuantity(id, quantity)
		writeJSON(w, s.cartOf(sess))
	case r.Method == http.MethodGet && path == "/products":
		writeJSON(w, s.Products)
	case r.Method == http.MethodGet && path == "/categories":
		writeJSON(w, s.Categories)
	case r.Method == http.MethodGet && path == "/orders":
		if sess.email == "" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		orders := s.Orders[sess.email]
		if orders == nil {
			orders = []order.Order{}
		}
		writeJSON(w, orders)
	case r.Method == http.MethodPost && path == "/checkout":
		var req order.CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad body"}`, http.StatusBadRequest)
			return
		}
		s.lastCheckout = &req
		writeJSON(w, order.CheckoutSession{URL: s.CheckoutURL})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	if ck, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions[ck.Value]; ok {
			return sess
		}
	}
	id := uuid.NewString()
	sess := &session{}
	s.sessions[id] = sess
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: id, Path: "/", HttpOnly: true})
	return sess
}

func (s *Server) product(id int64) *product.Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

func (s *Server) cartOf(sess *session) cart.Cart {
	result := cart.Cart{Items: []cart.Item{}}
	for _, l := range sess.lines {
		p := s.product(l.productID)
		if p == nil {
			continue
		}
		lineTotal := money.Times(p.PriceCents, l.quantity)
		result.Items = append(result.Items, cart.Item{
			ProductID:      p.ID,
			Name:           p.Name,
			ImageURL:       p.ImageURL,
			UnitPriceCents: p.PriceCents,
			Quantity:       l.quantity,
			LineTotalCents: lineTotal,
		})
		result.SubtotalCents += lineTotal
	}
	result.TaxCents = result.SubtotalCents * s.TaxPercent / 100
	result.TotalCents = result.SubtotalCents + result.TaxCents
	return result
}

func (sess *session) quantity(productID int64) int {
	for _, l := range sess.lines {
		if l.productID == productID {
			return l.quantity
		}
	}
	return 0
}

func (sess *session) setQuantity(productID int64, quantity int) {
	for i, l := range sess.lines {
		if l.productID == productID {
			if quantity <= 0 {
				sess.lines = append(sess.lines[:i], sess.lines[i+1:]...)
			} else {
				sess.lines[i].quantity = quantity
			}
			return
		}
	}
	if quantity > 0 {
		sess.lines = append(sess.lines, line{productID: productID, quantity: quantity})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(fmt.Sprintf("backendtest: encode response: %v", err))
	}
}
