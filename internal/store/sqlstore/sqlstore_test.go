package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
	"github.com/Skotchmaster/catalog/internal/store/storetest"
	pkgdb "github.com/Skotchmaster/catalog/pkg/db"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)

	repo, err := New(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestGormRepo_Users(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.InsertUsers(ctx, []models.User{
		{Username: "admin1", PasswordHash: "hash-a", Role: models.RoleAdmin},
		{Username: "user1", PasswordHash: "hash-u", Role: models.RoleUser},
	}))

	n, err = repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	u, err := repo.FindUserByUsername(ctx, "admin1")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, "hash-a", u.PasswordHash)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = repo.FindUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGormRepo_InsertUsers_DuplicateIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertUsers(ctx, []models.User{{Username: "user1", PasswordHash: "h", Role: models.RoleUser}}))

	err := repo.InsertUsers(ctx, []models.User{
		{Username: "user2", PasswordHash: "h", Role: models.RoleUser},
		{Username: "user1", PasswordHash: "h", Role: models.RoleUser},
	})
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGormRepo_RoleCheckConstraint(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.InsertUsers(context.Background(), []models.User{{Username: "root", PasswordHash: "h", Role: "superuser"}})
	require.Error(t, err)
}

func seedProducts(t *testing.T, repo *GormRepo) {
	t.Helper()
	require.NoError(t, repo.InsertProducts(context.Background(), []models.Product{
		{Name: "Laptop", Price: 999.99, Description: "High-performance laptop"},
		{Name: "Smartphone", Price: 699.99, Description: "Latest smartphone model"},
		{Name: "Sleeve", Price: 29.5, Description: "Padded LAPTOP sleeve"},
		{Name: "100% Cotton cloth", Price: 5, Description: "cleaning_cloth"},
		{Name: "Écran", Price: 199, Description: "Moniteur 24 pouces"},
	}))
}

func TestGormRepo_FindProducts_InsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	seedProducts(t, repo)

	items, err := repo.FindProducts(context.Background(), store.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i, want := range []string{"Laptop", "Smartphone", "Sleeve", "100% Cotton cloth", "Écran"} {
		assert.Equal(t, want, items[i].Name)
		assert.NotEmpty(t, items[i].ID)
	}
}

func TestGormRepo_FindProducts_Search(t *testing.T) {
	repo := newTestRepo(t)
	seedProducts(t, repo)
	ctx := context.Background()

	tests := []struct {
		search string
		want   []string
	}{
		{search: "lap", want: []string{"Laptop", "Sleeve"}},
		{search: "LAP", want: []string{"Laptop", "Sleeve"}},
		{search: "model", want: []string{"Smartphone"}},
		{search: "%", want: []string{"100% Cotton cloth"}},
		{search: "_", want: []string{"100% Cotton cloth"}},
		{search: "tablet", want: []string{}},
		{search: "écran", want: []string{"Écran"}},
		{search: "ÉCRAN", want: []string{"Écran"}},
		{search: "MONITEUR", want: []string{"Écran"}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			items, err := repo.FindProducts(ctx, store.ProductFilter{Search: tt.search})
			require.NoError(t, err)
			names := make([]string, 0, len(items))
			for _, p := range items {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestGormRepo_FindProducts_SearchMatchesReference(t *testing.T) {
	storetest.RunSearch(t, newTestRepo(t))
}

func TestNew_BackfillsFoldedColumns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.DB.Exec(
		`INSERT INTO products (name, price, description, name_folded, description_folded) VALUES (?, ?, ?, '', '')`,
		"Écran", 199, "Moniteur",
	).Error)

	repo, err := New(repo.DB)
	require.NoError(t, err)

	items, err := repo.FindProducts(ctx, store.ProductFilter{Search: "écran"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Écran", items[0].Name)

	items, err = repo.FindProducts(ctx, store.ProductFilter{Search: "moniteur"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGormRepo_InsertProduct_AssignsID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := models.Product{Name: "Mouse", Price: 49.99}
	require.NoError(t, repo.InsertProduct(ctx, &p))
	assert.Equal(t, "1", p.ID)

	dup := models.Product{Name: "Mouse", Price: 49.99}
	require.NoError(t, repo.InsertProduct(ctx, &dup))
	assert.Equal(t, "2", dup.ID)

	n, err := repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	items, err := repo.FindProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, "", items[0].Description)
}

func TestGormRepo_Ping(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\ ok`, escapeLike(`50% off_now \ ok`))
}
