package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/healthy-eats/storefront/internal/domain/cart"
	"github.com/healthy-eats/storefront/internal/infrastructure/backend"
	"github.com/healthy-eats/storefront/internal/infrastructure/backend/backendtest"
	"github.com/healthy-eats/storefront/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func timeoutAfter() <-chan time.Time {
	return time.After(timeout)
}

func newBackend(t *testing.T) (*backendtest.Server, *backend.Client) {
	t.Helper()
	srv := backendtest.NewServer()
	t.Cleanup(srv.Close)

	client, err := backend.New(srv.BaseURL(), logger.Discard())
	require.NoError(t, err)
	return srv, client
}

func TestAddThenSetZeroRemovesLine(t *testing.T) {
	_, client := newBackend(t)
	store := NewCartStore(client, logger.Discard())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 7, 2))

	c := store.Cart()
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(7), c.Items[0].ProductID)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 2*c.Items[0].UnitPriceCents, c.Items[0].LineTotalCents)
	assert.Equal(t, 2, store.ItemsCount())

	require.NoError(t, store.SetQuantity(ctx, 7, 0))
	assert.Equal(t, 0, store.Cart().QuantityOf(7))
	assert.Empty(t, store.Cart().Items)
}

func TestTotalsComeFromServer(t *testing.T) {
	srv, client := newBackend(t)
	srv.TaxPercent = 10
	store := NewCartStore(client, logger.Discard())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, 3))
	require.NoError(t, store.Add(ctx, 7, 1))

	c := store.Cart()
	assert.Equal(t, int64(610), c.SubtotalCents)
	assert.Equal(t, int64(61), c.TaxCents)
	assert.Equal(t, int64(671), c.TotalCents)
}

func TestAddDefaultsDeltaToOne(t *testing.T) {
	srv, client := newBackend(t)
	store := NewCartStore(client, logger.Discard())

	require.NoError(t, store.Add(context.Background(), 3, 0))
	assert.Equal(t, 1, store.ItemsCount())
	assert.Contains(t, srv.Requests(), "POST /cart/items?deltaQty=1&productId=3")
}

func TestSetQuantityNeverSendsNegative(t *testing.T) {
	srv, client := newBackend(t)
	store := NewCartStore(client, logger.Discard())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 3, 1))
	require.NoError(t, store.SetQuantity(ctx, 3, -1))

	assert.Contains(t, srv.Requests(), "PUT /cart/items/3?quantity=0")
	assert.Equal(t, 0, store.ItemsCount())
}

func TestRemoveAndClear(t *testing.T) {
	_, client := newBackend(t)
	store := NewCartStore(client, logger.Discard())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, 1))
	require.NoError(t, store.Add(ctx, 2, 1))
	require.NoError(t, store.Remove(ctx, 1))
	assert.Equal(t, 0, store.Cart().QuantityOf(1))
	assert.Equal(t, 1, store.Cart().QuantityOf(2))

	require.NoError(t, store.Clear(ctx))
	assert.True(t, store.Cart().IsEmpty())
}

func TestFailedMutationKeepsLastCart(t *testing.T) {
	srv, client := newBackend(t)
	store := NewCartStore(client, logger.Discard())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, 2))
	srv.Fail("PUT", "/cart/items/1", 500)

	err := store.SetQuantity(ctx, 1, 5)
	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 2, store.ItemsCount())
}

func TestAbsentCartCountsZero(t *testing.T) {
	_, client := newBackend(t)
	store := NewCartStore(client, logger.Discard())

	assert.Nil(t, store.Cart())
	assert.Equal(t, 0, store.ItemsCount())
}

// scriptedCartAPI lets a test decide when each response arrives
type scriptedCartAPI struct {
	responses map[int]chan *cart.Cart
}

func (s *scriptedCartAPI) GetCart(ctx context.Context) (*cart.Cart, error) {
	return nil, errors.New("not scripted")
}

func (s *scriptedCartAPI) AddCartItem(ctx context.Context, productID int64, deltaQty int) (*cart.Cart, error) {
	return nil, errors.New("not scripted")
}

func (s *scriptedCartAPI) SetCartItemQuantity(ctx context.Context, productID int64, quantity int) (*cart.Cart, error) {
	return <-s.responses[quantity], nil
}

func (s *scriptedCartAPI) RemoveCartItem(ctx context.Context, productID int64) (*cart.Cart, error) {
	return nil, errors.New("not scripted")
}

func (s *scriptedCartAPI) ClearCart(ctx context.Context) (*cart.Cart, error) {
	return nil, errors.New("not scripted")
}

func TestOutOfOrderResponseIsDiscarded(t *testing.T) {
	api := &scriptedCartAPI{responses: map[int]chan *cart.Cart{
		1: make(chan *cart.Cart, 1),
		2: make(chan *cart.Cart, 1),
	}}
	store := NewCartStore(api, logger.Discard())
	ctx := context.Background()

	var notified []int
	store.Subscribe(func(c *cart.Cart) { notified = append(notified, c.ItemsCount()) })

	firstDone := make(chan error)
	go func() { firstDone <- store.SetQuantity(ctx, 9, 1) }()

	// let the first request take its token before the second is issued
	require.Eventually(t, func() bool { return store.issuedCount() == 1 }, timeout, tick)

	api.responses[2] <- &cart.Cart{Items: []cart.Item{{ProductID: 9, Quantity: 2}}}
	require.NoError(t, store.SetQuantity(ctx, 9, 2))

	api.responses[1] <- &cart.Cart{Items: []cart.Item{{ProductID: 9, Quantity: 1}}}
	require.NoError(t, <-firstDone)

	assert.Equal(t, 2, store.ItemsCount(), "the stale response must not win")
	assert.Equal(t, []int{2}, notified)
}
