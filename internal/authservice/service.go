// Package authservice manages login, logout and access token issuing.
package authservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/bankapp/internal/domain"
	"github.com/go-petr/bankapp/pkg/errorspkg"
	"github.com/go-petr/bankapp/pkg/tokenpkg"
)

// PrincipalLookup provides the credentials of an account.
//
//go:generate mockgen -source service.go -destination service_mock.go -package authservice
type PrincipalLookup interface {
	AuthenticateLookup(ctx context.Context, username string) (domain.Principal, error)
}

// Checker verifies a plaintext password against its hash.
type Checker interface {
	Check(password, hashedPassword string) error
}

// Revoker stores the IDs of tokens that were logged out before they expired.
type Revoker interface {
	Revoke(ctx context.Context, id uuid.UUID, until time.Time) error
	IsRevoked(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service facilitates authentication logic.
type Service struct {
	lookup     PrincipalLookup
	checker    Checker
	tokenMaker tokenpkg.Maker
	revoker    Revoker
	duration   time.Duration
}

// New returns auth service issuing tokens valid for the given duration.
func New(pl PrincipalLookup, c Checker, tm tokenpkg.Maker, r Revoker, duration time.Duration) *Service {
	return &Service{
		lookup:     pl,
		checker:    c,
		tokenMaker: tm,
		revoker:    r,
		duration:   duration,
	}
}

// Login verifies the credentials and returns an access token.
//
// Unknown usernames and wrong passwords both fail with domain.ErrWrongCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, *tokenpkg.Payload, error) {
	l := zerolog.Ctx(ctx)

	p, err := s.lookup.AuthenticateLookup(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrWrongCredentials
		}

		return "", nil, err
	}

	if err := s.checker.Check(password, p.HashedPassword); err != nil {
		l.Warn().Err(err).Str("username", username).Send()
		return "", nil, domain.ErrWrongCredentials
	}

	role := domain.RoleUser
	if len(p.Roles) > 0 {
		role = p.Roles[0]
	}

	return s.createToken(ctx, p.Username, role)
}

// IssueToken returns an access token for the freshly registered username.
func (s *Service) IssueToken(ctx context.Context, username string) (string, *tokenpkg.Payload, error) {
	return s.createToken(ctx, username, domain.RoleUser)
}

func (s *Service) createToken(ctx context.Context, username, role string) (string, *tokenpkg.Payload, error) {
	token, payload, err := s.tokenMaker.CreateToken(username, role, s.duration)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return "", nil, errorspkg.ErrInternal
	}

	return token, payload, nil
}

// Logout revokes the token until it expires.
func (s *Service) Logout(ctx context.Context, payload *tokenpkg.Payload) error {
	return s.revoker.Revoke(ctx, payload.ID, payload.ExpiredAt)
}

// IsRevoked reports whether the token with the given ID was logged out.
func (s *Service) IsRevoked(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.revoker.IsRevoked(ctx, id)
}
