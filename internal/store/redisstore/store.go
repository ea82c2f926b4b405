package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// presence entries expire on their own so a crashed client does not
// stay "online" forever.
const presenceTTL = 5 * time.Minute

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func presenceKey(userID uint64) string {
	return fmt.Sprintf("presence:%d", userID)
}

func (s *Store) SetPresence(ctx context.Context, userID uint64, status string) error {
	return s.rdb.Set(ctx, presenceKey(userID), status, presenceTTL).Err()
}

// GetPresence returns the user's last announced status, or "offline"
// when nothing is recorded.
func (s *Store) GetPresence(ctx context.Context, userID uint64) (string, error) {
	v, err := s.rdb.Get(ctx, presenceKey(userID)).Result()
	if err == redis.Nil {
		return "offline", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
