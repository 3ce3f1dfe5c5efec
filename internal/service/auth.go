package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
	"github.com/Skotchmaster/catalog/pkg/hash"
	"github.com/Skotchmaster/catalog/pkg/logging"
	"github.com/Skotchmaster/catalog/pkg/mykafka"
	"github.com/Skotchmaster/catalog/pkg/tokens"
)

const (
	ReasonCredentialsRequired = "Username and password are required"
)

type AuthService struct {
	Repo      store.Store
	JWTSecret []byte
	Events    mykafka.Publisher
	Now       func() time.Time
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      models.PublicUser
}

func NewAuthService(repo store.Store, secret []byte, events mykafka.Publisher) *AuthService {
	if events == nil {
		events = mykafka.Nop{}
	}
	return &AuthService{Repo: repo, JWTSecret: secret, Events: events, Now: time.Now}
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Authenticate checks a username/password pair and issues a 24h session.
// Unknown users and wrong passwords fail identically.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, invalid(ReasonCredentialsRequired)
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			hash.BurnCompare(password)
			l.Info("login_failed", "reason", "invalid credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Info("login_failed", "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := tokens.SignSession(user.ID, user.Username, string(user.Role), s.now(), s.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	s.publish(ctx, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return &Session{Token: token, ExpiresAt: exp, User: user.Public()}, nil
}

// Verify decodes a bearer token into the identity it was issued for.
func (s *AuthService) Verify(_ context.Context, rawToken string) (*models.Identity, error) {
	if rawToken == "" {
		return nil, ErrMissingToken
	}
	claims, err := tokens.SessionClaimsFromToken(rawToken, s.JWTSecret, s.now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrExpiredToken, err)
	}
	role := models.Role(claims.Role)
	if claims.Subject == "" || !role.Valid() || claims.ExpiresAt == nil {
		return nil, ErrInvalidOrExpiredToken
	}
	return &models.Identity{
		ID:        claims.Subject,
		Username:  claims.Username,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (s *AuthService) RequireRole(identity *models.Identity, role models.Role) error {
	if identity == nil || identity.Role != role {
		return ErrForbidden
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	if err := s.Events.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}
