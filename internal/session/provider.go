package session

import (
	"context"
	"errors"
	"log"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

// UserStore is the slice of the repository the provider needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User, passwordHash string) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Provider owns the authenticated identity: sign-up, sign-in, sign-out and
// the current-session query.
type Provider struct {
	users  UserStore
	tokens TokenStore
}

func NewProvider(users UserStore, tokens TokenStore) *Provider {
	return &Provider{
		users:  users,
		tokens: tokens,
	}
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*domain.User, string, error) {
	if len(password) < 8 {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		ID:    uuid.New(),
		Email: email,
	}
	if err := p.users.CreateUser(ctx, user, string(hash)); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", ErrEmailTaken
		}
		log.Printf("repo create user error: %v", err)
		return nil, "", err
	}

	token, err := p.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, hash, err := p.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		log.Printf("repo get user error: %v", err)
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := p.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Current resolves a token to its user, or ErrNoSession.
func (p *Provider) Current(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	userID, err := p.tokens.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := p.users.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		// user deleted out from under a live session
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SignOut tears the session down. Unknown tokens are a no-op.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return p.tokens.Delete(ctx, token)
}

func (p *Provider) startSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()
	if err := p.tokens.Set(ctx, token, userID); err != nil {
		log.Printf("session store error: %v", err)
		return "", err
	}
	return token, nil
}
