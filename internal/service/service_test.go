package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/catalog/internal/store/memstore"
)

var testSecret = []byte("test-jwt-secret-0123456789")

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	return m.Called(ctx, topic, key, event).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

func expectPublish(topic string, err error) *mockPublisher {
	m := &mockPublisher{}
	m.On("PublishEvent", mock.Anything, topic, mock.AnythingOfType("string"), mock.Anything).Return(err)
	return m
}

// seededStore returns a memory store holding the default users and products.
func seededStore(t *testing.T) *memstore.Store {
	t.Helper()
	repo := memstore.New()
	s := NewSeeder(repo)
	s.HashCost = bcrypt.MinCost
	_, err := s.Seed(context.Background())
	require.NoError(t, err)
	return repo
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func price(v float64) *float64 { return &v }

func text(v string) *string { return &v }

func validationReason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}

