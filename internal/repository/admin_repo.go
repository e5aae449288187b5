package repository

import (
	"context"

	"eventtix/registrar/internal/model"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	GetByID(ctx context.Context, id uint) (*model.Admin, error)
	// GetByLogin matches either the username or the email, case-insensitively.
	GetByLogin(ctx context.Context, login string) (*model.Admin, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error)
	List(ctx context.Context) ([]model.Admin, error)
	Update(ctx context.Context, admin *model.Admin) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountActiveSuperadmins(ctx context.Context) (int64, error)
}
