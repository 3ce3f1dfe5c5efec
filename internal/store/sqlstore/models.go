package sqlstore

import (
	"strconv"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
)

type userRow struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password;not null"`
	Role         string `gorm:"not null;check:chk_users_role,role IN ('admin','user')"`
}

func (userRow) TableName() string { return "users" }

// productRow keeps case-folded copies of the searchable text. SQL LOWER()
// only folds ASCII on SQLite, so folding happens in Go on every dialect.
type productRow struct {
	ID                uint    `gorm:"primaryKey;autoIncrement"`
	Name              string  `gorm:"not null"`
	Price             float64 `gorm:"not null"`
	Description       string  `gorm:"not null;default:''"`
	NameFolded        string  `gorm:"column:name_folded;not null;default:'';index"`
	DescriptionFolded string  `gorm:"column:description_folded;not null;default:''"`
}

func (productRow) TableName() string { return "products" }

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (r userRow) toModel() models.User {
	return models.User{
		ID:           formatID(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         models.Role(r.Role),
	}
}

func userFromModel(u models.User) userRow {
	return userRow{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	}
}

func (r productRow) toModel() models.Product {
	return models.Product{
		ID:          formatID(r.ID),
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
	}
}

func productFromModel(p models.Product) productRow {
	return productRow{
		Name:              p.Name,
		Price:             p.Price,
		Description:       p.Description,
		NameFolded:        store.Fold(p.Name),
		DescriptionFolded: store.Fold(p.Description),
	}
}
