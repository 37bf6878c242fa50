// internal/state/app.go
package state

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// App is the application context of one visitor: the backend it talks to and
// the two shared stores every page reads from.
type App struct {
	API     Backend
	Session *SessionStore
	Cart    *CartStore

	logger    logrus.FieldLogger
	startOnce sync.Once
	started   chan struct{}
}

// NewApp wires the stores to the backend. Call Start to populate them.
func NewApp(api Backend, logger logrus.FieldLogger) *App {
	return &App{
		API:     api,
		Session: NewSessionStore(api, logger),
		Cart:    NewCartStore(api, logger),
		logger:  logger,
		started: make(chan struct{}),
	}
}

// Start restores the session and then eagerly refreshes the cart, so the
// navigation badge reflects the server before any cart page is opened. The
// refresh follows the restore so a visitor without a backend session gets
// exactly one. It returns immediately; Started is closed when both finish.
func (a *App) Start(ctx context.Context) {
	a.startOnce.Do(func() {
		go func() {
			defer close(a.started)

			a.Session.Restore(ctx)
			if err := a.Cart.Refresh(ctx); err != nil {
				a.logger.WithError(err).Warn("Initial cart refresh failed")
			}
		}()
	})
}

// Started is closed once the initial restore and refresh are done
func (a *App) Started() <-chan struct{} {
	return a.started
}
