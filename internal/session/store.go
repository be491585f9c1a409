package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
)

// Session is the server-side state behind a browser cookie. The cookie only
// carries the opaque token; everything else lives in redis.
type Session struct {
	Token     string      `json:"-"`
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	ImagePath string      `json:"image_path"`
}

var ErrNoSession = errors.New("no session")

const keyPrefix = "session:"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create persists a fresh session and returns its opaque token.
func (s *Store) Create(ctx context.Context, sess *Session) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	sess.Token = token
	return token, nil
}

func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, err
	}
	sess.Token = token
	// sliding expiry
	_ = s.rdb.Expire(ctx, keyPrefix+token, s.ttl).Err()
	return &sess, nil
}

// Refresh rewrites the stored state for an existing token, e.g. after a
// profile update changed the username or image.
func (s *Store) Refresh(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPrefix+sess.Token, payload, s.ttl).Err()
}

func (s *Store) Destroy(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}
