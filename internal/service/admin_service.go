package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventtix/registrar/internal/config"
	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
	"eventtix/registrar/pkg/crypto"
)

var usernameInvalidChars = regexp.MustCompile(`[^a-z0-9._-]+`)

type CreateAdminInput struct {
	Username string          `json:"username" validate:"required,max=255"`
	Email    string          `json:"email" validate:"required,email,max=255"`
	Name     string          `json:"name" validate:"required,max=255"`
	Password string          `json:"password" validate:"required,min=8,max=72"`
	Role     model.AdminRole `json:"role" validate:"omitempty,oneof=superadmin reviewer"`
}

// UpdateAdminInput is a partial update; nil fields are left unchanged.
type UpdateAdminInput struct {
	Email    *string          `json:"email" validate:"omitnil,email,max=255"`
	Name     *string          `json:"name" validate:"omitnil,min=1,max=255"`
	Password *string          `json:"password" validate:"omitnil,min=8,max=72"`
	Role     *model.AdminRole `json:"role" validate:"omitnil,oneof=superadmin reviewer"`
	IsActive *bool            `json:"is_active"`
}

type AdminService interface {
	List(ctx context.Context, actor Actor) ([]model.Admin, error)
	Get(ctx context.Context, id uint) (*model.Admin, error)
	Create(ctx context.Context, in CreateAdminInput, actor Actor) (*model.Admin, error)
	Update(ctx context.Context, id uint, in UpdateAdminInput, actor Actor) (*model.Admin, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	EnsureBootstrap(ctx context.Context, cfg config.BootstrapConfig) error
}

type adminService struct {
	store  repository.Store
	audit  AuditService
	logger *zap.Logger
}

func NewAdminService(store repository.Store, audit AuditService, logger *zap.Logger) AdminService {
	return &adminService{store: store, audit: audit, logger: logger}
}

func (s *adminService) List(ctx context.Context, actor Actor) ([]model.Admin, error) {
	if err := actor.requireSuperadmin(); err != nil {
		return nil, err
	}
	admins, err := s.store.Repositories().Admins.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return admins, nil
}

func (s *adminService) Get(ctx context.Context, id uint) (*model.Admin, error) {
	admin, err := s.store.Repositories().Admins.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrAdminNotFound)
	}
	return admin, nil
}

func (s *adminService) Create(ctx context.Context, in CreateAdminInput, actor Actor) (*model.Admin, error) {
	if err := actor.requireSuperadmin(); err != nil {
		return nil, err
	}
	admin, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin created", zap.String("username", admin.Username), zap.String("by", actor.Username))
	s.audit.Record(ctx, actor.record(model.AuditActionCreateAdmin, nil, map[string]any{
		"admin_id": admin.ID,
		"username": admin.Username,
		"email":    admin.Email,
		"role":     admin.Role,
	}))
	return admin, nil
}

func (s *adminService) create(ctx context.Context, in CreateAdminInput) (*model.Admin, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if in.Username == "" {
		in.Username = usernameFromEmail(in.Email)
	}
	if in.Role == "" {
		in.Role = model.AdminRoleReviewer
	}
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	admin := &model.Admin{
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
	}

	repo := s.store.Repositories().Admins
	taken, err := repo.ExistsByUsernameOrEmail(ctx, admin.Username, admin.Email, 0)
	if err != nil {
		return nil, dbError(err)
	}
	if taken {
		return nil, ErrAdminExists
	}
	if err := repo.Create(ctx, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAdminExists
		}
		return nil, dbError(err)
	}
	return admin, nil
}

func (s *adminService) Update(ctx context.Context, id uint, in UpdateAdminInput, actor Actor) (*model.Admin, error) {
	if err := actor.requireSuperadmin(); err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &email
	}
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var (
		admin   *model.Admin
		changed []string
	)
	err := s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		var err error
		if admin, err = tx.Admins.GetByID(ctx, id); err != nil {
			return notFoundOr(err, ErrAdminNotFound)
		}
		wasSuperadmin := admin.IsActiveSuperadmin()

		if in.Email != nil && *in.Email != admin.Email {
			taken, err := tx.Admins.ExistsByUsernameOrEmail(ctx, "", *in.Email, admin.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrAdminExists
			}
			admin.Email = *in.Email
			changed = append(changed, "email")
		}
		if in.Name != nil && *in.Name != admin.Name {
			admin.Name = *in.Name
			changed = append(changed, "name")
		}
		if in.Password != nil {
			hash, err := crypto.HashPassword(*in.Password)
			if err != nil {
				return err
			}
			admin.PasswordHash = hash
			changed = append(changed, "password")
		}
		if in.Role != nil && *in.Role != admin.Role {
			admin.Role = *in.Role
			changed = append(changed, "role")
		}
		if in.IsActive != nil && *in.IsActive != admin.IsActive {
			admin.IsActive = *in.IsActive
			changed = append(changed, "is_active")
		}
		if len(changed) == 0 {
			return nil
		}

		if wasSuperadmin && !admin.IsActiveSuperadmin() {
			if err := requireAnotherSuperadmin(ctx, tx); err != nil {
				return err
			}
		}
		if err := tx.Admins.Update(ctx, admin); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAdminExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}
	if len(changed) == 0 {
		return admin, nil
	}

	s.logger.Info("admin updated", zap.Uint("admin_id", id), zap.Strings("changed", changed), zap.String("by", actor.Username))
	s.audit.Record(ctx, actor.record(model.AuditActionUpdateAdmin, nil, map[string]any{
		"admin_id": id,
		"changed":  changed,
	}))
	return admin, nil
}

func (s *adminService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := actor.requireSuperadmin(); err != nil {
		return err
	}
	var admin *model.Admin
	err := s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		var err error
		if admin, err = tx.Admins.GetByID(ctx, id); err != nil {
			return notFoundOr(err, ErrAdminNotFound)
		}
		if admin.IsActiveSuperadmin() {
			if err := requireAnotherSuperadmin(ctx, tx); err != nil {
				return err
			}
		}
		if err := tx.Admins.Delete(ctx, id); err != nil {
			return notFoundOr(err, ErrAdminNotFound)
		}
		return nil
	})
	if err != nil {
		return dbError(err)
	}

	s.logger.Info("admin deleted", zap.String("username", admin.Username), zap.String("by", actor.Username))
	s.audit.Record(ctx, actor.record(model.AuditActionDeleteAdmin, nil, map[string]any{
		"admin_id": id,
		"username": admin.Username,
	}))
	return nil
}

// requireAnotherSuperadmin is called before an active superadmin stops being one.
func requireAnotherSuperadmin(ctx context.Context, tx *repository.Repositories) error {
	n, err := tx.Admins.CountActiveSuperadmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastSuperadmin
	}
	return nil
}

// EnsureBootstrap creates the configured superadmin when no admin exists yet.
// A generated password is logged once when none is configured.
func (s *adminService) EnsureBootstrap(ctx context.Context, cfg config.BootstrapConfig) error {
	n, err := s.store.Repositories().Admins.Count(ctx)
	if err != nil {
		return dbError(err)
	}
	if n > 0 {
		return nil
	}
	if cfg.Email == "" {
		s.logger.Warn("no admin accounts exist and bootstrap.email is not set")
		return nil
	}

	password := cfg.Password
	generated := password == ""
	if generated {
		if password, err = crypto.GeneratePassword(); err != nil {
			return err
		}
	}
	name := cfg.Name
	if name == "" {
		name = "Administrator"
	}
	admin, err := s.create(ctx, CreateAdminInput{
		Username: cfg.Username,
		Email:    cfg.Email,
		Name:     name,
		Password: password,
		Role:     model.AdminRoleSuperadmin,
	})
	if err != nil {
		return err
	}

	fields := []zap.Field{zap.String("username", admin.Username), zap.String("email", admin.Email)}
	if generated {
		fields = append(fields, zap.String("password", password))
	}
	s.logger.Info("bootstrap superadmin created", fields...)
	return nil
}

// usernameFromEmail derives a username from the local part of an email address.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return usernameInvalidChars.ReplaceAllString(strings.ToLower(local), "")
}

var _ AdminService = (*adminService)(nil)
