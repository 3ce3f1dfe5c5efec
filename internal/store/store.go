// Package store defines the persistence contract shared by the relational,
// document and in-memory backends.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/catalog/internal/models"
)

var (
	ErrNotFound          = errors.New("store: record not found")
	ErrDuplicateUsername = errors.New("store: username already exists")
)

type ProductFilter struct {
	// Search matches name or description case-insensitively as a substring.
	// Empty means no filtering.
	Search string
}

type Store interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	InsertUsers(ctx context.Context, users []models.User) error

	CountProducts(ctx context.Context) (int64, error)
	FindProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	InsertProduct(ctx context.Context, product *models.Product) error
	InsertProducts(ctx context.Context, products []models.Product) error

	Ping(ctx context.Context) error
	Close() error
}

// Fold is the case folding every backend applies to searchable text.
func Fold(s string) string {
	return strings.ToLower(s)
}

// MatchesProduct is the reference predicate for ProductFilter.Search.
func MatchesProduct(p models.Product, search string) bool {
	if search == "" {
		return true
	}
	needle := Fold(search)
	return strings.Contains(Fold(p.Name), needle) ||
		strings.Contains(Fold(p.Description), needle)
}
