package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vostok-trade/backend/internal/models"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

const (
	mailAccountKey = "mailer:test-account"
	mailAccountTTL = 7 * 24 * time.Hour
)

// KeyValue is the subset of the Redis client the stores use.
type KeyValue interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
}

// MailAccountStore keeps the disposable fallback mailbox in Redis so every
// replica and restart sends through the same inbox.
type MailAccountStore struct {
	rdb KeyValue
}

func NewMailAccountStore(rdb KeyValue) *MailAccountStore {
	return &MailAccountStore{rdb: rdb}
}

// Load returns the stored account, or ErrNotFound.
func (s *MailAccountStore) Load(ctx context.Context) (*models.MailAccount, error) {
	raw, err := s.rdb.Get(ctx, mailAccountKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load mail account: %w", err)
	}
	var acc models.MailAccount
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, fmt.Errorf("decode mail account: %w", err)
	}
	return &acc, nil
}

func (s *MailAccountStore) Save(ctx context.Context, acc *models.MailAccount) error {
	raw, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode mail account: %w", err)
	}
	return s.rdb.Set(ctx, mailAccountKey, raw, mailAccountTTL).Err()
}
