package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const floodPrefix = "flood:"

// FloodGuard allows one update per identity per window.
type FloodGuard interface {
	Allow(ctx context.Context, telegramID int64) (bool, error)
}

type redisFloodGuard struct {
	client *goredis.Client
	window time.Duration
}

func NewRedisFloodGuard(client *goredis.Client, window time.Duration) FloodGuard {
	return &redisFloodGuard{client: client, window: window}
}

func (g *redisFloodGuard) Allow(ctx context.Context, telegramID int64) (bool, error) {
	if g.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	ok, err := g.client.SetNX(ctx, floodPrefix+strconv.FormatInt(telegramID, 10), 1, g.window).Result()
	if err != nil {
		return false, fmt.Errorf("flood guard: %w", err)
	}
	return ok, nil
}
