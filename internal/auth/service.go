package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/internal/users"
	pkgAuth "github.com/vallyhouse/vally-backend/pkg/auth"
	"github.com/vallyhouse/vally-backend/pkg/config"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
	"github.com/vallyhouse/vally-backend/pkg/security"
)

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the minted token and public user projection.
type LoginResult struct {
	AccessToken string
	SessionID   string
	User        *users.UserDTO
}

type sessionRegistrar interface {
	Register(ctx context.Context, sessionID string, userID string) error
	Revoke(ctx context.Context, sessionID string) error
}

// Service exposes credential login and session revocation.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// ServiceParams packages the dependencies for the auth service.
type ServiceParams struct {
	UserRepo  *users.Repository
	Sessions  sessionRegistrar
	JWTConfig config.JWTConfig
}

type service struct {
	userRepo *users.Repository
	sessions sessionRegistrar
	jwtCfg   config.JWTConfig
}

// NewService constructs an auth service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	return &service{
		userRepo: params.UserRepo,
		sessions: params.Sessions,
		jwtCfg:   params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	payload := pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	}
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse minted token")
	}

	if err := s.sessions.Register(ctx, claims.ID, user.ID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register session")
	}

	return &LoginResult{
		AccessToken: token,
		SessionID:   claims.ID,
		User:        users.NewUserDTO(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
