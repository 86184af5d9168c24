package rest

import (
	"context"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/account/app"
	"github.com/dwikikusuma/storefront/internal/account/domain"
	"github.com/dwikikusuma/storefront/internal/backend"
	"github.com/pkg/errors"
)

type userDTO struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"isAdmin"`
}

func (d userDTO) toDomain() domain.User {
	return domain.User{ID: d.ID, Name: d.Name, Email: d.Email, Address: d.Address, Phone: d.Phone, IsAdmin: d.IsAdmin}
}

// authDTO accepts both {"token", "user": {...}} and a flat user document
// carrying a token field.
type authDTO struct {
	userDTO
	Token string   `json:"token"`
	User  *userDTO `json:"user"`
}

func (d authDTO) toDomain() domain.Session {
	u := d.userDTO
	if d.User != nil {
		u = *d.User
	}
	return domain.Session{Token: d.Token, User: u.toDomain()}
}

type UserClient struct {
	api *backend.Client
}

func NewUserClient(api *backend.Client) *UserClient {
	return &UserClient{api: api}
}

func (c *UserClient) Me(ctx context.Context, token string) (domain.User, error) {
	var out userDTO
	err := c.api.Get(ctx, "/auth/me", token, &out)
	if errors.Is(err, backend.ErrUnauthorized) {
		return domain.User{}, app.ErrUnauthenticated
	}
	if err != nil {
		return domain.User{}, errors.Wrap(err, "current user")
	}
	return out.toDomain(), nil
}

func (c *UserClient) UpdateMe(ctx context.Context, token string, upd domain.ProfileUpdate) (domain.User, error) {
	var out userDTO
	err := c.api.Do(ctx, http.MethodPut, "/auth/me", token, upd, &out)
	if errors.Is(err, backend.ErrUnauthorized) {
		return domain.User{}, app.ErrUnauthenticated
	}
	if err != nil {
		return domain.User{}, errors.Wrap(err, "update profile")
	}
	return out.toDomain(), nil
}

func (c *UserClient) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

func (c *UserClient) Register(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

func (c *UserClient) authenticate(ctx context.Context, path string, creds domain.Credentials) (domain.Session, error) {
	var out authDTO
	err := c.api.Post(ctx, path, "", creds, &out)
	if errors.Is(err, backend.ErrUnauthorized) {
		return domain.Session{}, app.ErrUnauthenticated
	}
	if err != nil {
		return domain.Session{}, errors.Wrap(err, path)
	}
	if out.Token == "" {
		return domain.Session{}, errors.Errorf("%s: backend returned no token", path)
	}
	return out.toDomain(), nil
}
