package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/todohub/internal/config"
	"github.com/geocoder89/todohub/internal/domain/user"
)

var (
	ErrUnknownEmail  = errors.New("user does not exist")
	ErrWrongPassword = errors.New("invalid password")
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
	Save(ctx context.Context, u *user.User) (*user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Service registers and authenticates users.
type Service struct {
	users   UserStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	timeout time.Duration
}

func NewService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		timeout: timeout,
	}
}

// Register creates a user and returns a token for it. The email check is
// best-effort: the store does not enforce uniqueness.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	cctx, cancel := config.WithTimeout(ctx, s.timeout)
	defer cancel()

	existing, err := s.users.FindByEmail(cctx, email)
	if err != nil {
		return "", fmt.Errorf("lookup email: %w", err)
	}

	if existing != nil {
		return "", user.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	saved, err := s.users.Save(cctx, user.New(name, email, hash))
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.issue(saved.ID)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	cctx, cancel := config.WithTimeout(ctx, s.timeout)
	defer cancel()

	found, err := s.users.FindByEmail(cctx, email)
	if err != nil {
		return "", fmt.Errorf("lookup email: %w", err)
	}

	if found == nil {
		return "", ErrUnknownEmail
	}

	if !s.hasher.Verify(password, found.PasswordHash) {
		return "", ErrWrongPassword
	}

	return s.issue(found.ID)
}

// Details resolves the authenticated user. Missing users yield user.ErrNotFound.
func (s *Service) Details(ctx context.Context, userID string) (*user.User, error) {
	cctx, cancel := config.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.FindByID(cctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if u == nil {
		return nil, user.ErrNotFound
	}

	return u, nil
}

func (s *Service) issue(userID string) (string, error) {
	tok, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return tok, nil
}
