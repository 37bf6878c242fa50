// internal/infrastructure/database/redis/cookie_store.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// storedCookie is the persisted part of a backend cookie
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CookieStore keeps each visitor's backend cookies so a visitor survives a
// storefront restart or an idle eviction.
type CookieStore struct {
	client *Client
	ttl    time.Duration
}

// NewCookieStore creates a store whose entries expire after ttl
func NewCookieStore(client *Client, ttl time.Duration) *CookieStore {
	return &CookieStore{client: client, ttl: ttl}
}

// Key returns the Redis key holding visitorID's cookies
func (s *CookieStore) Key(visitorID string) string {
	return fmt.Sprintf("storefront:visitor:%s:cookies", visitorID)
}

// Load returns the saved cookies for visitorID; none is not an error
func (s *CookieStore) Load(ctx context.Context, visitorID string) ([]*http.Cookie, error) {
	var stored []storedCookie
	err := s.client.GetJSON(ctx, s.Key(visitorID), &stored)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load visitor cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}

// Save replaces visitorID's cookies. An empty set deletes the entry.
func (s *CookieStore) Save(ctx context.Context, visitorID string, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return s.Delete(ctx, visitorID)
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	if err := s.client.SetJSON(ctx, s.Key(visitorID), stored, s.ttl); err != nil {
		return fmt.Errorf("failed to save visitor cookies: %w", err)
	}
	return nil
}

// Touch extends the entry's lifetime
func (s *CookieStore) Touch(ctx context.Context, visitorID string) error {
	return s.client.Expire(ctx, s.Key(visitorID), s.ttl)
}

// Delete drops visitorID's cookies
func (s *CookieStore) Delete(ctx context.Context, visitorID string) error {
	return s.client.Del(ctx, s.Key(visitorID))
}
