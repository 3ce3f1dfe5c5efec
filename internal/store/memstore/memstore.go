// Package memstore is a process-local Store used by tests and by
// STORE_DRIVER=memory.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	users    []models.User
	products []models.Product
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) InsertUsers(_ context.Context, users []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.users)+len(users))
	for _, u := range s.users {
		seen[u.Username] = struct{}{}
	}
	for _, u := range users {
		if _, dup := seen[u.Username]; dup {
			return store.ErrDuplicateUsername
		}
		seen[u.Username] = struct{}{}
	}
	for _, u := range users {
		u.ID = uuid.NewString()
		s.users = append(s.users, u)
	}
	return nil
}

func (s *Store) CountProducts(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *Store) FindProducts(_ context.Context, filter store.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if store.MatchesProduct(p, filter.Search) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) InsertProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.ID = uuid.NewString()
	s.products = append(s.products, *product)
	return nil
}

func (s *Store) InsertProducts(ctx context.Context, products []models.Product) error {
	for i := range products {
		if err := s.InsertProduct(ctx, &products[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
