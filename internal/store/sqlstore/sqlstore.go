// Package sqlstore implements store.Store on gorm, backed by embedded SQLite
// or PostgreSQL.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
)

type GormRepo struct {
	DB *gorm.DB
}

var _ store.Store = (*GormRepo)(nil)

// New migrates the schema and returns a repo over db.
func New(db *gorm.DB) (*GormRepo, error) {
	if err := db.AutoMigrate(&userRow{}, &productRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	r := &GormRepo{DB: db}
	if err := r.backfillFolded(); err != nil {
		return nil, fmt.Errorf("backfill folded columns: %w", err)
	}
	return r, nil
}

// backfillFolded fills the folded columns of rows written before they existed.
func (r *GormRepo) backfillFolded() error {
	var rows []productRow
	if err := r.DB.Where("name_folded = '' AND name <> ''").Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		err := r.DB.Model(&productRow{}).Where("id = ?", row.ID).Updates(map[string]any{
			"name_folded":        store.Fold(row.Name),
			"description_folded": store.Fold(row.Description),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var row userRow
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	u := row.toModel()
	return &u, nil
}

func (r *GormRepo) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&userRow{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormRepo) InsertUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([]userRow, len(users))
	for i, u := range users {
		rows[i] = userFromModel(u)
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&productRow{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormRepo) FindProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&productRow{})
	if filter.Search != "" {
		pattern := "%" + escapeLike(store.Fold(filter.Search)) + "%"
		q = q.Where(`name_folded LIKE ? ESCAPE '\' OR description_folded LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var rows []productRow
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]models.Product, len(rows))
	for i, row := range rows {
		items[i] = row.toModel()
	}
	return items, nil
}

func (r *GormRepo) InsertProduct(ctx context.Context, product *models.Product) error {
	row := productFromModel(*product)
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	product.ID = formatID(row.ID)
	return nil
}

func (r *GormRepo) InsertProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]productRow, len(products))
	for i, p := range products {
		rows[i] = productFromModel(p)
	}
	if err := r.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}
	for i := range products {
		products[i].ID = formatID(rows[i].ID)
	}
	return nil
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepo) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

const pgUniqueViolation = "23505"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
