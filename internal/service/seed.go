package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
	"github.com/Skotchmaster/catalog/pkg/hash"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

type SeedUser struct {
	Username string
	Password string
	Role     models.Role
}

var DefaultUsers = []SeedUser{
	{Username: "admin1", Password: "admin123", Role: models.RoleAdmin},
	{Username: "admin2", Password: "admin456", Role: models.RoleAdmin},
	{Username: "user1", Password: "user123", Role: models.RoleUser},
	{Username: "user2", Password: "user456", Role: models.RoleUser},
}

var DefaultProducts = []models.Product{
	{Name: "Laptop", Price: 999.99, Description: "High-performance laptop"},
	{Name: "Smartphone", Price: 699.99, Description: "Latest smartphone model"},
	{Name: "Headphones", Price: 149.99, Description: "Wireless noise-canceling headphones"},
	{Name: "Keyboard", Price: 79.99, Description: "Mechanical gaming keyboard"},
	{Name: "Mouse", Price: 49.99, Description: "Ergonomic wireless mouse"},
}

type Seeder struct {
	Repo     store.Store
	Users    []SeedUser
	Products []models.Product
	HashCost int
}

func NewSeeder(repo store.Store) *Seeder {
	return &Seeder{
		Repo:     repo,
		Users:    DefaultUsers,
		Products: DefaultProducts,
		HashCost: bcrypt.DefaultCost,
	}
}

type SeedResult struct {
	UsersCreated    bool
	ProductsCreated bool
}

// Seed inserts the default users and products into empty collections only,
// so running it again is a no-op.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	l := logging.FromContext(ctx).With("svc", "seed")
	var res SeedResult

	users, err := s.Repo.CountUsers(ctx)
	if err != nil {
		return res, fmt.Errorf("count users: %w", err)
	}
	if users == 0 {
		batch := make([]models.User, 0, len(s.Users))
		for _, u := range s.Users {
			h, err := hash.HashPasswordWithCost(u.Password, s.HashCost)
			if err != nil {
				return res, fmt.Errorf("hash password for %s: %w", u.Username, err)
			}
			batch = append(batch, models.User{Username: u.Username, PasswordHash: h, Role: u.Role})
		}
		switch err := s.Repo.InsertUsers(ctx, batch); {
		case errors.Is(err, store.ErrDuplicateUsername):
			l.Warn("seed_users_skipped", "reason", "users appeared concurrently")
		case err != nil:
			return res, fmt.Errorf("insert users: %w", err)
		default:
			res.UsersCreated = true
			l.Info("seed_users_created", "count", len(batch))
		}
	}

	products, err := s.Repo.CountProducts(ctx)
	if err != nil {
		return res, fmt.Errorf("count products: %w", err)
	}
	if products == 0 {
		batch := make([]models.Product, len(s.Products))
		copy(batch, s.Products)
		if err := s.Repo.InsertProducts(ctx, batch); err != nil {
			return res, fmt.Errorf("insert products: %w", err)
		}
		res.ProductsCreated = true
		l.Info("seed_products_created", "count", len(batch))
	}

	return res, nil
}
