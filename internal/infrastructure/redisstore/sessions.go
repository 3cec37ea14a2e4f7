package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
)

func sessionKey(userID string) string { return "user:session:" + userID }
func stateKey(userID string) string   { return "user:state:" + userID }

// Sessions keeps one session hash per identity plus a JSON snapshot of the
// resolved session state.
type Sessions struct {
	rdb        *redis.Client
	stateTTL   time.Duration
	loadingTTL time.Duration
}

func NewSessions(rdb *redis.Client, stateTTL, loadingTTL time.Duration) *Sessions {
	return &Sessions{rdb: rdb, stateTTL: stateTTL, loadingTTL: loadingTTL}
}

func (s *Sessions) Save(ctx context.Context, sess *entity.Session, email string) error {
	key := sessionKey(sess.UserID)
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    sess.UserID,
			"email":      email,
			"sid":        sess.ID,
			"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
			"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (s *Sessions) Get(ctx context.Context, userID string) (*entity.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data["sid"] == "" {
		return nil, repository.ErrNotFound
	}
	sess := &entity.Session{ID: data["sid"], UserID: data["user_id"]}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, data["created_at"])
	sess.ExpiresAt, _ = time.Parse(time.RFC3339Nano, data["expires_at"])
	return sess, nil
}

// rotateScript swaps the sid only when the caller holds the current one and
// moves the hash expiry to the new refresh expiry.
var rotateScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "sid") ~= ARGV[1] then
  return 0
end
redis.call("HSET", KEYS[1], "sid", ARGV[2], "updated_at", ARGV[3], "expires_at", ARGV[4])
redis.call("PEXPIREAT", KEYS[1], ARGV[5])
return 1
`)

func (s *Sessions) Rotate(ctx context.Context, userID, oldSID, newSID string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return errors.New("session already expired")
	}
	n, err := rotateScript.Run(ctx, s.rdb, []string{sessionKey(userID)},
		oldSID, newSID,
		time.Now().UTC().Format(time.RFC3339Nano),
		expiresAt.UTC().Format(time.RFC3339Nano),
		expiresAt.UnixMilli(),
	).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Sessions) Destroy(ctx context.Context, userID string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return helpers.RedisDel(ctx, pipe, sessionKey(userID), stateKey(userID))
	})
	return err
}

func (s *Sessions) GetState(ctx context.Context, userID string) (*entity.SessionState, error) {
	var st entity.SessionState
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, stateKey(userID), &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

func (s *Sessions) PutState(ctx context.Context, st *entity.SessionState) error {
	uid := st.UserID()
	if uid == "" {
		return errors.New("cannot cache anonymous state")
	}
	return helpers.RedisSetJSON(ctx, s.rdb, stateKey(uid), st, s.stateTTL)
}

// MarkLoading records a pending resolution. The short TTL guarantees the
// marker settles even if the resolution never runs.
func (s *Sessions) MarkLoading(ctx context.Context, userID string) error {
	return helpers.RedisSetJSON(ctx, s.rdb, stateKey(userID), entity.SessionState{Loading: true}, s.loadingTTL)
}

func (s *Sessions) InvalidateState(ctx context.Context, userID string) error {
	return helpers.RedisDel(ctx, s.rdb, stateKey(userID))
}

var _ repository.SessionStore = (*Sessions)(nil)
