package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type usersRepo interface {
	Create(ctx context.Context, email, passwordHash, name string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	TouchLastLogin(ctx context.Context, id int, at time.Time) error
}

type sessionStore interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) error
}

type Service struct {
	repo     usersRepo
	sessions sessionStore
	now      func() time.Time
}

func NewService(repo usersRepo, sessions sessionStore) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	if !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.KindInvalidInput, ErrInvalidEmail)
	}
	if len([]rune(name)) < minNameLength {
		return nil, apperr.New(apperr.KindInvalidInput, ErrNameTooShort)
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.New(apperr.KindInvalidInput, ErrPasswordTooShort)
	}

	hash, err := pkg.HashPassword(req.Password)
	if errors.Is(err, pkg.ErrPasswordTooLong) {
		return nil, apperr.New(apperr.KindInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, email, hash, name)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.New(apperr.KindConflict, ErrEmailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Debugf("user registered: %d", u.ID)
	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, ErrWrongCredentials)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !pkg.CheckPasswordHash(req.Password, u.PasswordHash) {
		return nil, apperr.New(apperr.KindUnauthorized, ErrWrongCredentials)
	}
	if !u.IsActive {
		return nil, apperr.New(apperr.KindForbidden, ErrAccountDisabled)
	}

	now := s.now()
	token, err := s.sessions.Login(ctx, u.ID, now)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		// login already succeeded, the timestamp is informational
		log.Errorf("update last login for user %d: %s", u.ID, err)
	}

	return &LoginResponse{
		Token:  token,
		UserID: u.ID,
		Name:   u.Name,
		Role:   u.Role,
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Logout(ctx, token); err != nil {
		return apperr.New(apperr.KindUnauthorized, err)
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, userID int) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.New(apperr.KindNotFound, ErrUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
