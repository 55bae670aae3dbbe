// Package redis is a session store backed by Redis. Each session is a hash
// that Redis expires on its own at the session's expiry; a per-user set
// indexes the session ids for mass revocation and expires with the user's
// latest session.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"campus_delivery/internal/models"
	"campus_delivery/internal/storage"

	"github.com/redis/go-redis/v9"
)

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

func NewWithClient(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}

const (
	sessionPrefix      = "session:"
	userSessionsPrefix = "user_sessions:"
)

func sessionKey(id string) string {
	return sessionPrefix + id
}

func userSessionsKey(uid int64) string {
	return userSessionsPrefix + strconv.FormatInt(uid, 10)
}

// extendIndex pushes the index key's expiry out to the given unix millis,
// never pulling it in. A missing or persistent index counts as expired.
const extendIndex = `
local function extendIndex(key, expMilli, nowMilli)
	local ttl = redis.call('PTTL', key)
	if ttl < 0 or nowMilli + ttl < expMilli then
		redis.call('PEXPIREAT', key, expMilli)
	end
end
`

// KEYS: session key, index key. ARGV: user id, expiry millis, session id,
// session key prefix, now millis.
var saveSessionScript = redis.NewScript(extendIndex + `
redis.call('HSET', KEYS[1], 'user_id', ARGV[1], 'expires_at', ARGV[2])
redis.call('PEXPIREAT', KEYS[1], ARGV[2])
for _, id in ipairs(redis.call('SMEMBERS', KEYS[2])) do
	if redis.call('EXISTS', ARGV[4] .. id) == 0 then
		redis.call('SREM', KEYS[2], id)
	end
end
redis.call('SADD', KEYS[2], ARGV[3])
extendIndex(KEYS[2], tonumber(ARGV[2]), tonumber(ARGV[5]))
return 1
`)

// KEYS: session key. ARGV: expiry millis, index key prefix, now millis.
var extendSessionScript = redis.NewScript(extendIndex + `
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
local uid = redis.call('HGET', KEYS[1], 'user_id')
redis.call('HSET', KEYS[1], 'expires_at', ARGV[1])
redis.call('PEXPIREAT', KEYS[1], ARGV[1])
if uid then
	extendIndex(ARGV[2] .. uid, tonumber(ARGV[1]), tonumber(ARGV[3]))
end
return 1
`)

// SaveSession stores the session hash and indexes it under its user. Ids of
// sessions Redis already expired are dropped from the index, and the index
// itself expires with the user's latest session.
func (r *RedisRepo) SaveSession(ctx context.Context, session models.Session) error {
	const op = "storage.redis.SaveSession"

	keys := []string{sessionKey(session.ID), userSessionsKey(session.UserID)}

	err := saveSessionScript.Run(ctx, r.client, keys,
		session.UserID,
		session.ExpiresAt.UnixMilli(),
		session.ID,
		sessionPrefix,
		time.Now().UnixMilli(),
	).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Session(ctx context.Context, id string) (models.Session, error) {
	const op = "storage.redis.Session"

	vals, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(vals) == 0 {
		return models.Session{}, storage.ErrSessionNotFound
	}

	uid, err := strconv.ParseInt(vals["user_id"], 10, 64)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: bad user_id: %w", op, err)
	}

	expMilli, err := strconv.ParseInt(vals["expires_at"], 10, 64)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: bad expires_at: %w", op, err)
	}

	return models.Session{
		ID:        id,
		UserID:    uid,
		ExpiresAt: time.UnixMilli(expMilli).UTC(),
	}, nil
}

func (r *RedisRepo) ExtendSession(ctx context.Context, id string, expiresAt time.Time) error {
	const op = "storage.redis.ExtendSession"

	n, err := extendSessionScript.Run(ctx, r.client, []string{sessionKey(id)},
		expiresAt.UnixMilli(),
		userSessionsPrefix,
		time.Now().UnixMilli(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}

func (r *RedisRepo) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.redis.DeleteSession"

	key := sessionKey(id)

	uid, err := r.client.HGet(ctx, key, "user_id").Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, userSessionsKey(uid), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) DeleteUserSessions(ctx context.Context, uid int64) error {
	const op = "storage.redis.DeleteUserSessions"

	indexKey := userSessionsKey(uid)

	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	pipe := r.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, sessionKey(id))
	}
	pipe.Del(ctx, indexKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
