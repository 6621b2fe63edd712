package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "wodhub-session||"
	sessionsSetKey   = "wodhub-sessions"
	tokenIssuer      = "wodhub"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// IsAuthFailure reports whether err means the token is not acceptable, as opposed
// to the session store being unavailable.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionExpired)
}

type claims struct {
	UserID int `json:"uid"`
	jwt.RegisteredClaims
}

// Service issues signed bearer tokens backed by redis sessions.
// A token is valid only while its session key exists and is younger than ttl.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	secret      []byte
	// ability to inject session id generator (for unit and dev testing)
	NewSessionID func() string
}

func NewAuthService(
	ttl time.Duration,
	secret string,
	redisClient *redis.Client,
) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		ttl:          ttl,
		secret:       []byte(secret),
		redisClient:  redisClient,
		NewSessionID: uuid.NewString,
	}
}

func (as *Service) TTL() time.Duration {
	return as.ttl
}

// Login opens a session for userID and returns the signed token for it.
func (as *Service) Login(ctx context.Context, userID int, createdAt time.Time) (string, error) {
	sessionID := as.NewSessionID()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   strconv.Itoa(userID),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(createdAt),
			ExpiresAt: jwt.NewNumericDate(createdAt.Add(as.ttl)),
		},
	})
	signed, err := token.SignedString(as.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	sessionKey := sessionKeyPrefix + sessionID
	if err := as.redisClient.Set(ctx, sessionKey, createdAt.Unix(), as.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	// add session to the set scanned by the sweeper
	if err := as.redisClient.SAdd(ctx, sessionsSetKey, sessionID).Err(); err != nil {
		return "", fmt.Errorf("register session: %w", err)
	}

	return signed, nil
}

func (as *Service) parse(token string) (*claims, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return as.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.ID == "" || c.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// Resolve returns the user id the token was issued for, if its session is still alive.
func (as *Service) Resolve(ctx context.Context, token string) (int, error) {
	c, err := as.parse(token)
	if err != nil {
		return 0, err
	}

	createdAtUnixStr, err := as.redisClient.Get(ctx, sessionKeyPrefix+c.ID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("get session: %w", err)
	}

	createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session created at: %w", err)
	}
	if time.Since(time.Unix(createdAtUnix, 0)) > as.ttl {
		return 0, ErrSessionExpired
	}

	return c.UserID, nil
}

// Logout revokes the session behind token. Revoking an unknown session is not an error.
func (as *Service) Logout(ctx context.Context, token string) error {
	c, err := as.parse(token)
	if err != nil {
		return err
	}

	if err := as.redisClient.Del(ctx, sessionKeyPrefix+c.ID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := as.redisClient.SRem(ctx, sessionsSetKey, c.ID).Err(); err != nil {
		return fmt.Errorf("unregister session: %w", err)
	}

	return nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionIDs, err := as.redisClient.SMembers(ctx, sessionsSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionIDs) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionIDs))
	var toRemove []string
	for _, sessionID := range sessionIDs {
		createdAtUnixStr, err := as.redisClient.Get(ctx, sessionKeyPrefix+sessionID).Result()
		if errors.Is(err, redis.Nil) {
			// key already expired in redis, only the set entry is left
			toRemove = append(toRemove, sessionID)
			continue
		}
		if err != nil {
			log.Errorf("auth service, scan and clean session %s: %s", sessionID, err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
		if err != nil {
			log.Errorf("auth service, scan and clean session %s: %s", sessionID, err)
			continue
		}

		if time.Since(time.Unix(createdAtUnix, 0)) > as.ttl {
			toRemove = append(toRemove, sessionID)
		}
	}

	for _, sessionID := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
			log.Errorf("auth service, clean session %s: %s", sessionID, err)
			continue
		}
		if err := as.redisClient.SRem(ctx, sessionsSetKey, sessionID).Err(); err != nil {
			log.Errorf("auth service, clean session %s: %s", sessionID, err)
			continue
		}
	}

	log.Debugf("auth service, scan and clean done, removed %d sessions", len(toRemove))
}

// RunSweeper calls ScanAndClean every interval until ctx is done.
func (as *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugln("auth session sweeper stopped")
			return
		case <-ticker.C:
			as.ScanAndClean(ctx)
		}
	}
}
