package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]string),
	}
}

func key(url string) string {
	return strings.TrimRight(strings.TrimSpace(url), "/")
}

// Save stores or replaces the token for url.
func (s *TokenStore) Save(_ context.Context, url, token string) error {
	if key(url) == "" {
		return domain.NewConfigError("url", "is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key(url)] = token
	return nil
}

// Get returns the token for url.
func (s *TokenStore) Get(_ context.Context, url string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[key(url)]
	if !ok {
		return "", fmt.Errorf("token for %s: %w", url, domain.ErrNotFound)
	}
	return token, nil
}

// Delete removes the token for url.
func (s *TokenStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[key(url)]; !ok {
		return fmt.Errorf("token for %s: %w", url, domain.ErrNotFound)
	}
	delete(s.tokens, key(url))
	return nil
}

// List returns the URLs with stored tokens, sorted.
func (s *TokenStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	urls := make([]string, 0, len(s.tokens))
	for url := range s.tokens {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls, nil
}
