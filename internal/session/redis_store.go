package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "fitforge:session:"

// RedisStore keeps the bearer token server side. The browser only holds an
// opaque session id.
type RedisStore struct {
	client  *redis.Client
	decoder Decoder
	cookie  CookieOptions
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewRedisStore creates a Redis-backed store. cookie.TTL doubles as the key TTL.
func NewRedisStore(client *redis.Client, decoder Decoder, cookie CookieOptions) *RedisStore {
	return &RedisStore{client: client, decoder: decoder, cookie: cookie}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Set(w http.ResponseWriter, r *http.Request, token string) (Session, error) {
	sess, err := s.decoder.Decode(token)
	if err != nil {
		_ = s.Clear(w, r) //nolint:errcheck // the decode error is what the caller needs
		recordEvent("malformed", s.Name())
		return Session{}, err
	}

	// A login replaces whatever the browser held before
	if oldID, ok := s.cookie.read(r); ok {
		s.client.Del(r.Context(), redisKeyPrefix+oldID)
	}

	id := uuid.NewString()
	if err := s.client.Set(r.Context(), redisKeyPrefix+id, token, s.cookie.TTL).Err(); err != nil {
		return Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	s.cookie.write(w, id)
	recordEvent("set", s.Name())

	return sess, nil
}

func (s *RedisStore) Get(r *http.Request) (Session, error) {
	id, ok := s.cookie.read(r)
	if !ok {
		return Session{}, ErrNoSession
	}

	token, err := s.client.Get(r.Context(), redisKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	return s.decoder.Decode(token)
}

func (s *RedisStore) Clear(w http.ResponseWriter, r *http.Request) error {
	s.cookie.expire(w)
	recordEvent("cleared", s.Name())

	id, ok := s.cookie.read(r)
	if !ok {
		return nil
	}
	if err := s.client.Del(r.Context(), redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
