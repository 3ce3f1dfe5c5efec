package config

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const MinSecretLen = 16

var ErrMissingSecret = errors.New("JWT_SECRET is required outside development")

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverPostgres, DriverElasticsearch, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}
	if (c.StoreDriver == DriverSQLite || c.StoreDriver == DriverPostgres) && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.StoreDriver == DriverElasticsearch && c.ESURL == "" {
		return errors.New("ES_URL is empty")
	}
	if len(c.JWTSecret) > 0 && len(c.JWTSecret) < MinSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLen)
	}
	return nil
}

// ResolveSecret fills in a random signing secret for development runs and
// reports whether it did so. Outside development a missing secret is an error.
func (c *Config) ResolveSecret() (bool, error) {
	if len(c.JWTSecret) > 0 {
		return false, nil
	}
	if c.Env != EnvDevelopment {
		return false, ErrMissingSecret
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return false, fmt.Errorf("generate secret: %w", err)
	}
	c.JWTSecret = secret
	return true, nil
}
