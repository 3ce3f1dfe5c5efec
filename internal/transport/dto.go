package transport

import (
	"time"

	"github.com/Skotchmaster/catalog/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

// CreateProductRequest uses pointers so that an absent price can be told
// apart from a zero price.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

type SeedResponse struct {
	Message  string `json:"message"`
	Users    string `json:"users"`
	Products string `json:"products"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
