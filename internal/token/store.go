// Package token persists refresh-token hashes.  Redis is the primary
// backing (the key's TTL doubles as the token expiry); when Redis is
// unavailable at startup the store degrades to a process-local map so
// auth keeps working alongside the in-memory storage backend.
package token

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalid is returned when a refresh token is unknown, expired or
// revoked.  Callers cannot distinguish the three; a client retries by
// logging in again.
var ErrInvalid = errors.New("token: invalid refresh token")

const keyPrefix = "refresh:"

type memEntry struct {
	userID int64
	exp    time.Time
}

// Store holds refresh-token hashes mapped to user ids.
type Store struct {
	rdb *redis.Client

	mu  sync.Mutex
	mem map[string]memEntry
}

// NewStore returns a token store.  rdb may be nil, in which case the
// in-memory fallback is used.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, mem: make(map[string]memEntry)}
}

// Save records a refresh-token hash for a user until exp.
func (s *Store) Save(ctx context.Context, userID int64, hash string, exp time.Time) error {
	if s.rdb != nil {
		ttl := time.Until(exp)
		if ttl <= 0 {
			return nil
		}
		return s.rdb.Set(ctx, keyPrefix+hash, strconv.FormatInt(userID, 10), ttl).Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[hash] = memEntry{userID: userID, exp: exp}
	return nil
}

// Validate returns the owning user id for a live token hash.
func (s *Store) Validate(ctx context.Context, hash string) (int64, error) {
	if s.rdb != nil {
		v, err := s.rdb.Get(ctx, keyPrefix+hash).Result()
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalid
		}
		if err != nil {
			return 0, err
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, ErrInvalid
		}
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.mem[hash]
	if !ok || time.Now().UTC().After(e.exp) {
		delete(s.mem, hash)
		return 0, ErrInvalid
	}
	return e.userID, nil
}

// Revoke invalidates a token hash.  Revoking an unknown hash is not an
// error.
func (s *Store) Revoke(ctx context.Context, hash string) error {
	if s.rdb != nil {
		return s.rdb.Del(ctx, keyPrefix+hash).Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mem, hash)
	return nil
}
