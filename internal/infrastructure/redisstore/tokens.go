package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
)

func keyVerifyToken(t string) string { return "email:verify:token:" + t }

// VerifyTokens stores email verification tokens mapped to identity ids.
type VerifyTokens struct {
	rdb *redis.Client
}

func NewVerifyTokens(rdb *redis.Client) *VerifyTokens {
	return &VerifyTokens{rdb: rdb}
}

func (t *VerifyTokens) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	tok, err := helpers.GenToken(32)
	if err != nil {
		return "", err
	}
	if err := t.rdb.Set(ctx, keyVerifyToken(tok), userID, ttl).Err(); err != nil {
		return "", err
	}
	return tok, nil
}

func (t *VerifyTokens) Consume(ctx context.Context, token string) (string, error) {
	uid, err := t.rdb.GetDel(ctx, keyVerifyToken(token)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && uid == "") {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}

var _ repository.TokenStore = (*VerifyTokens)(nil)
