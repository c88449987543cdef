package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore talks to the backend cache service over RESP.
type RedisStore struct {
	client *redis.Client
}

var _ Backend = (*RedisStore)(nil)

func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		// one remote invocation per call
		MaxRetries: -1,
		// the backend only has to speak plain RESP2 GET/SET/DEL
		Protocol:        2,
		DisableIdentity: true,
	})
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", errors.Wrapf(err, "get %q", key)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl *int32) error {
	args := []any{"set", key, value}
	if ttl != nil {
		args = append(args, "ex", *ttl)
	}
	reply, err := s.client.Do(ctx, args...).Text()
	if err != nil {
		return wrapReplyErr(err, "set", key)
	}
	if reply != "OK" {
		return errors.Wrapf(ErrRejected, "set %q: reply %q", key, reply)
	}
	return nil
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	if _, err := s.client.Del(ctx, key).Result(); err != nil {
		return wrapReplyErr(err, "del", key)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// wrapReplyErr separates error replies sent by the backend, which become
// ErrRejected, from transport failures.
func wrapReplyErr(err error, op, key string) error {
	if errors.Is(err, redis.Nil) {
		return errors.Wrapf(ErrRejected, "%s %q: nil reply", op, key)
	}
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return errors.Wrapf(ErrRejected, "%s %q: %s", op, key, replyErr.Error())
	}
	return errors.Wrapf(err, "%s %q", op, key)
}
