// Package visitor maps browser visitors to their own application context.
//
// A visitor is one browser, identified by a signed cookie. Each visitor gets a
// state.App with a private backend cookie jar, so the backend sees the same
// session a single browser tab would. Backend cookies are persisted so a
// visitor keeps its session and cart across evictions and restarts.
package visitor

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/domain/cart"
	"github.com/healthy-eats/storefront/internal/infrastructure/backend"
	"github.com/healthy-eats/storefront/internal/state"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CookieStore persists backend cookies per visitor
type CookieStore interface {
	Load(ctx context.Context, visitorID string) ([]*http.Cookie, error)
	Save(ctx context.Context, visitorID string, cookies []*http.Cookie) error
	Touch(ctx context.Context, visitorID string) error
}

const persistTimeout = 3 * time.Second

type entry struct {
	id     string
	app    *state.App
	client *backend.Client

	mu        sync.Mutex
	lastSeen  time.Time
	persisted string

	unsubscribe []func()
}

// Registry owns every live visitor App
type Registry struct {
	cfg         *config.Config
	cookies     CookieStore
	logger      logrus.FieldLogger
	backendOpts []backend.Option
	now         func() time.Time

	mu       sync.Mutex
	visitors map[string]*entry
	creating singleflight.Group
}

// NewRegistry creates an empty registry. opts are applied to every backend
// client it creates.
func NewRegistry(cfg *config.Config, cookies CookieStore, logger logrus.FieldLogger, opts ...backend.Option) *Registry {
	return &Registry{
		cfg:         cfg,
		cookies:     cookies,
		logger:      logger,
		backendOpts: opts,
		now:         time.Now,
		visitors:    make(map[string]*entry),
	}
}

// Get returns the App for visitorID, creating and starting it on first sight.
// The App outlives ctx; only its values are kept. The registry lock is held
// for map access only, never across the cookie store.
func (r *Registry) Get(ctx context.Context, visitorID string) (*state.App, error) {
	if app, ok := r.lookup(visitorID); ok {
		return app, nil
	}

	v, err, _ := r.creating.Do(visitorID, func() (interface{}, error) {
		if app, ok := r.lookup(visitorID); ok {
			return app, nil
		}
		return r.create(ctx, visitorID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*state.App), nil
}

// Touch marks the visitor active while app is still its live App. It reports
// false once app has been evicted, even if the id has since been revived.
func (r *Registry) Touch(visitorID string, app *state.App) bool {
	r.mu.Lock()
	e, ok := r.visitors[visitorID]
	r.mu.Unlock()
	if !ok || e.app != app {
		return false
	}

	e.mu.Lock()
	e.lastSeen = r.now()
	e.mu.Unlock()
	return true
}

func (r *Registry) lookup(visitorID string) (*state.App, bool) {
	r.mu.Lock()
	e, ok := r.visitors[visitorID]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	e.lastSeen = r.now()
	e.mu.Unlock()
	return e.app, true
}

// create builds the visitor's App from its persisted cookies and registers it
func (r *Registry) create(ctx context.Context, visitorID string) (*state.App, error) {
	log := r.logger.WithField("visitor_id", visitorID)

	client, err := backend.New(r.cfg.Backend.BaseURL, log, r.backendOpts...)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	saved, err := r.cookies.Load(loadCtx, visitorID)
	cancel()
	if err != nil {
		log.WithError(err).Warn("Failed to load visitor cookies, starting a fresh backend session")
	}
	client.SetCookies(saved)

	e := &entry{
		id:        visitorID,
		client:    client,
		app:       state.NewApp(client, log),
		lastSeen:  r.now(),
		persisted: cookieFingerprint(client.Cookies()),
	}
	e.unsubscribe = []func(){
		e.app.Session.Subscribe(func(state.Session) { r.persist(e) }),
		e.app.Cart.Subscribe(func(*cart.Cart) { r.persist(e) }),
	}

	r.mu.Lock()
	r.visitors[visitorID] = e
	r.mu.Unlock()

	log.Debug("Visitor context created")
	e.app.Start(context.WithoutCancel(ctx))

	return e.app, nil
}

// Len returns the number of live visitors
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Run evicts idle visitors every Visitor.SweepEvery until ctx is done
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Visitor.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep drops visitors idle longer than Visitor.IdleTTL and extends the
// persisted cookies of the rest. It returns how many were evicted.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.cfg.Visitor.IdleTTL)

	var evicted, alive []*entry
	r.mu.Lock()
	for id, e := range r.visitors {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()

		if idle {
			delete(r.visitors, id)
			evicted = append(evicted, e)
		} else {
			alive = append(alive, e)
		}
	}
	r.mu.Unlock()

	for _, e := range evicted {
		for _, unsubscribe := range e.unsubscribe {
			unsubscribe()
		}
		r.persist(e)
	}

	for _, e := range alive {
		touchCtx, cancel := context.WithTimeout(ctx, persistTimeout)
		if err := r.cookies.Touch(touchCtx, e.id); err != nil {
			r.logger.WithError(err).WithField("visitor_id", e.id).Debug("Failed to extend visitor cookies")
		}
		cancel()
	}

	if len(evicted) > 0 {
		r.logger.WithFields(logrus.Fields{
			"evicted": len(evicted),
			"live":    len(alive),
		}).Info("Evicted idle visitors")
	}
	return len(evicted)
}

// persist saves the visitor's backend cookies when they changed
func (r *Registry) persist(e *entry) {
	cookies := e.client.Cookies()
	fingerprint := cookieFingerprint(cookies)

	e.mu.Lock()
	defer e.mu.Unlock()
	if fingerprint == e.persisted {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.cookies.Save(ctx, e.id, cookies); err != nil {
		r.logger.WithError(err).WithField("visitor_id", e.id).Warn("Failed to persist visitor cookies")
		return
	}
	e.persisted = fingerprint
}

func cookieFingerprint(cookies []*http.Cookie) string {
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ";")
}
