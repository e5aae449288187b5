package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
	"eventtix/registrar/pkg/crypto"
	jwtpkg "eventtix/registrar/pkg/jwt"
)

// TokenSet is returned after a successful login.
type TokenSet struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	Admin       *model.Admin `json:"admin"`
}

type AuthService interface {
	Login(ctx context.Context, login, password, ip, userAgent string) (*TokenSet, error)
	Logout(ctx context.Context, claims *jwtpkg.Claims, actor Actor) error
	// Authenticate validates a bearer token and returns its claims with the current admin row.
	Authenticate(ctx context.Context, token string) (*jwtpkg.Claims, *model.Admin, error)
}

type authService struct {
	admins     repository.AdminRepository
	stateStore repository.StateStore
	jwtManager *jwtpkg.Manager
	audit      AuditService
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthService(
	admins repository.AdminRepository,
	stateStore repository.StateStore,
	jwtManager *jwtpkg.Manager,
	audit AuditService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		admins:     admins,
		stateStore: stateStore,
		jwtManager: jwtManager,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *authService) Login(ctx context.Context, login, password, ip, userAgent string) (*TokenSet, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	admin, err := s.admins.GetByLogin(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, dbError(err)
	}
	if !crypto.CheckPassword(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	token, _, err := s.jwtManager.GenerateAccessToken(admin.ID, admin.Username, string(admin.Role))
	if err != nil {
		return nil, err
	}

	now := s.now()
	admin.LastLogin = &now
	if err := s.admins.Update(ctx, admin); err != nil {
		s.logger.Warn("failed to record last login", zap.Uint("admin_id", admin.ID), zap.Error(err))
	}

	actor := Actor{AdminID: admin.ID, Username: admin.Username, Role: admin.Role, IP: ip, UserAgent: userAgent}
	s.audit.Record(ctx, actor.record(model.AuditActionLogin, nil, map[string]any{"username": admin.Username}))

	return &TokenSet{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtManager.AccessTokenTTL().Seconds()),
		Admin:       admin,
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwtpkg.Claims, actor Actor) error {
	if err := s.stateStore.RevokeToken(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.record(model.AuditActionLogout, nil, map[string]any{"username": actor.Username}))
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*jwtpkg.Claims, *model.Admin, error) {
	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		return nil, nil, ErrInvalidToken.wrap(err)
	}
	revoked, err := s.stateStore.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	id, err := claims.AdminID()
	if err != nil {
		return nil, nil, ErrInvalidToken.wrap(err)
	}
	admin, err := s.admins.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidToken
	}
	if err != nil {
		return nil, nil, dbError(err)
	}
	if !admin.IsActive {
		return nil, nil, ErrAdminInactive
	}
	return claims, admin, nil
}

var _ AuthService = (*authService)(nil)
