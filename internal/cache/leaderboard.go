package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
)

const (
	defaultKeyPrefix = "gamehaqqs:"
	defaultTTL       = 24 * time.Hour
)

// RedisConfig captures the connection parameters of the leaderboard cache.
type RedisConfig struct {
	Address   string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
	Timeout   time.Duration
}

// LeaderboardCache mirrors leaderboard snapshots into Redis. Each period uses a sorted set of
// user ids scored by rank plus a hash of encoded entries, replaced atomically on every store.
type LeaderboardCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisClient builds a go-redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	address := strings.TrimSpace(cfg.Address)
	if address == "" {
		return nil, errors.New("redis: address is required")
	}

	opts := &redis.Options{
		Addr:     address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
		opts.ReadTimeout = cfg.Timeout
		opts.WriteTimeout = cfg.Timeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", address, err)
	}
	return client, nil
}

// NewLeaderboardCache wraps an existing client.
func NewLeaderboardCache(client redis.UniversalClient, cfg RedisConfig) (*LeaderboardCache, error) {
	if client == nil {
		return nil, errors.New("leaderboard cache: client is required")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LeaderboardCache{client: client, prefix: prefix, ttl: ttl}, nil
}

// Store replaces the cached snapshot of period with entries.
func (c *LeaderboardCache) Store(ctx context.Context, period string, entries []models.LeaderboardEntry) error {
	ranksKey, entriesKey := c.keys(period)

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, ranksKey, entriesKey)

	if len(entries) > 0 {
		members := make([]redis.Z, 0, len(entries))
		fields := make(map[string]any, len(entries))
		for _, entry := range entries {
			data, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("leaderboard cache: encode entry: %w", err)
			}
			members = append(members, redis.Z{Score: float64(entry.Rank), Member: entry.UserID})
			fields[entry.UserID] = data
		}
		pipe.ZAdd(ctx, ranksKey, members...)
		pipe.HSet(ctx, entriesKey, fields)
		pipe.Expire(ctx, ranksKey, c.ttl)
		pipe.Expire(ctx, entriesKey, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard cache: store %s: %w", period, err)
	}
	return nil
}

// Top returns up to limit entries in rank order. The boolean is false on a cache miss.
func (c *LeaderboardCache) Top(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, bool, error) {
	ranksKey, entriesKey := c.keys(period)

	userIDs, err := c.client.ZRange(ctx, ranksKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("leaderboard cache: ranks %s: %w", period, err)
	}
	if len(userIDs) == 0 {
		return nil, false, nil
	}

	values, err := c.client.HMGet(ctx, entriesKey, userIDs...).Result()
	if err != nil {
		return nil, false, fmt.Errorf("leaderboard cache: entries %s: %w", period, err)
	}

	entries, complete := decodeEntries(values)
	if !complete {
		return nil, false, nil
	}
	return entries, true, nil
}

// Invalidate drops the cached snapshot of period.
func (c *LeaderboardCache) Invalidate(ctx context.Context, period string) error {
	ranksKey, entriesKey := c.keys(period)
	return c.client.Del(ctx, ranksKey, entriesKey).Err()
}

func (c *LeaderboardCache) keys(period string) (string, string) {
	base := c.prefix + "leaderboard:" + period
	return base + ":ranks", base + ":entries"
}

// decodeEntries reports false when any hash field is missing or unreadable, which happens when
// the two keys drifted apart and the snapshot must be reloaded from the database.
func decodeEntries(values []any) ([]models.LeaderboardEntry, bool) {
	entries := make([]models.LeaderboardEntry, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			return nil, false
		}
		var entry models.LeaderboardEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, false
		}
		entries = append(entries, entry)
	}
	return entries, true
}
