package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"nutriplan/domain"
)

const sessionPrefix = "onboarding:"

type (
	// SessionStore keeps dialogue progress per Telegram identity.
	SessionStore interface {
		Get(ctx context.Context, telegramID int64) (domain.OnboardingSession, error)
		Save(ctx context.Context, session domain.OnboardingSession) error
		Delete(ctx context.Context, telegramID int64) (bool, error)
	}

	redisSessionStore struct {
		client *goredis.Client
		ttl    time.Duration
	}
)

func NewRedisSessionStore(client *goredis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func sessionKey(telegramID int64) string {
	return sessionPrefix + strconv.FormatInt(telegramID, 10)
}

func (s *redisSessionStore) Get(ctx context.Context, telegramID int64) (domain.OnboardingSession, error) {
	if s.client == nil {
		return domain.OnboardingSession{}, fmt.Errorf("redis client is nil")
	}

	raw, err := s.client.Get(ctx, sessionKey(telegramID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.OnboardingSession{}, domain.ErrSessionNotFound
		}
		return domain.OnboardingSession{}, fmt.Errorf("get onboarding session: %w", err)
	}

	var session domain.OnboardingSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.OnboardingSession{}, fmt.Errorf("decode onboarding session: %w", err)
	}
	return session, nil
}

// Save writes the session and restarts its TTL.
func (s *redisSessionStore) Save(ctx context.Context, session domain.OnboardingSession) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode onboarding session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.TelegramID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save onboarding session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, telegramID int64) (bool, error) {
	if s.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	n, err := s.client.Del(ctx, sessionKey(telegramID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete onboarding session: %w", err)
	}
	return n > 0, nil
}
