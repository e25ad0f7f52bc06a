package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"safehaven/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionCache handles Redis operations for survey sessions
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	// Delete reports whether the session was still stored
	Delete(ctx context.Context, id string) (bool, error)

	// Submit lock, held for the duration of one completion call
	AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, id string) error
	SubmitLockHeld(ctx context.Context, id string) (bool, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (c *sessionCache) lockKey(id string) string {
	return fmt.Sprintf("session:%s:submit", id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) (bool, error) {
	var removed *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, c.key(id))
		pipe.Del(ctx, c.lockKey(id))
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed.Val() > 0, nil
}

func (c *sessionCache) AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, c.lockKey(id), time.Now().Unix(), ttl).Result()
}

func (c *sessionCache) ReleaseSubmitLock(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.lockKey(id)).Err()
}

func (c *sessionCache) SubmitLockHeld(ctx context.Context, id string) (bool, error) {
	n, err := c.client.Exists(ctx, c.lockKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
