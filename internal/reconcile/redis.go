package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisKey is the hash holding every pending entry.
const DefaultRedisKey = "aduan:pending"

// RedisLedger stores entries in one Redis hash so several dashboard
// instances see the same pending intents.
type RedisLedger struct {
	Client *redis.Client
	Key    string
}

// NewRedisLedger connects to addr, instruments the client for tracing and
// verifies the connection.
func NewRedisLedger(ctx context.Context, addr string) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return &RedisLedger{Client: client, Key: DefaultRedisKey}, nil
}

func (l *RedisLedger) Get(ctx context.Context, token string) (Entry, bool, error) {
	raw, err := l.Client.HGet(ctx, l.Key, token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode entry %s: %w", token, err)
	}
	return e, true, nil
}

func (l *RedisLedger) Put(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", e.Token, err)
	}
	return l.Client.HSet(ctx, l.Key, e.Token, data).Err()
}

func (l *RedisLedger) Delete(ctx context.Context, token string) error {
	return l.Client.HDel(ctx, l.Key, token).Err()
}

// List returns entries oldest first. Undecodable values are skipped.
func (l *RedisLedger) List(ctx context.Context) ([]Entry, error) {
	raw, err := l.Client.HGetAll(ctx, l.Key).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(raw))
	for token, v := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			zap.L().Warn("skipping undecodable ledger entry", zap.String("token", token), zap.Error(err))
			continue
		}
		out = append(out, e)
	}

	sortEntries(out)
	return out, nil
}

// Close shuts down the Redis client.
func (l *RedisLedger) Close() {
	if l != nil && l.Client != nil {
		if err := l.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
