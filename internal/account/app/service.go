package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/account/domain"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidInput    = errors.New("invalid input")
)

// UserSource resolves and updates the user behind a bearer token and
// exchanges credentials for a backend-issued token.
type UserSource interface {
	Me(ctx context.Context, token string) (domain.User, error)
	UpdateMe(ctx context.Context, token string, upd domain.ProfileUpdate) (domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	Register(ctx context.Context, creds domain.Credentials) (domain.Session, error)
}

type Service struct {
	users UserSource
}

func NewService(users UserSource) *Service {
	return &Service{users: users}
}

func (s *Service) Profile(ctx context.Context, token string) (domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.User{}, ErrUnauthenticated
	}
	return s.users.Me(ctx, token)
}

// UpdateProfile trims every field and requires a name and a plausible email.
func (s *Service) UpdateProfile(ctx context.Context, token string, upd domain.ProfileUpdate) (domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.User{}, ErrUnauthenticated
	}
	upd = domain.ProfileUpdate{
		Name:    strings.TrimSpace(upd.Name),
		Email:   strings.TrimSpace(upd.Email),
		Address: strings.TrimSpace(upd.Address),
		Phone:   strings.TrimSpace(upd.Phone),
	}
	if upd.Name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := checkEmail(upd.Email); err != nil {
		return domain.User{}, err
	}
	return s.users.UpdateMe(ctx, token, upd)
}

func (s *Service) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return domain.Session{}, err
	}
	if password == "" {
		return domain.Session{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return s.users.Login(ctx, domain.Credentials{Email: email, Password: password})
}

func (s *Service) Register(ctx context.Context, name, email, password string) (domain.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return domain.Session{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := checkEmail(email); err != nil {
		return domain.Session{}, err
	}
	if password == "" {
		return domain.Session{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return s.users.Register(ctx, domain.Credentials{Name: name, Email: email, Password: password})
}

func checkEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, email)
	}
	return nil
}
