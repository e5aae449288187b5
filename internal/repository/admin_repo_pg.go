package repository

import (
	"context"

	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
)

type pgAdminRepository struct {
	db *gorm.DB
}

func NewPGAdminRepository(db *gorm.DB) AdminRepository {
	return &pgAdminRepository{db: db}
}

func (r *pgAdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *pgAdminRepository) GetByID(ctx context.Context, id uint) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *pgAdminRepository) GetByLogin(ctx context.Context, login string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).
		Where("lower(username) = lower(?) OR lower(email) = lower(?)", login, login).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *pgAdminRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Admin{}).
		Where("(lower(username) = lower(?) OR lower(email) = lower(?)) AND id <> ?", username, email, excludeID).
		Count(&n).Error
	return n > 0, err
}

func (r *pgAdminRepository) List(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&admins).Error
	return admins, err
}

func (r *pgAdminRepository) Update(ctx context.Context, admin *model.Admin) error {
	return r.db.WithContext(ctx).Save(admin).Error
}

func (r *pgAdminRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Admin{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pgAdminRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Admin{}).Count(&n).Error
	return n, err
}

func (r *pgAdminRepository) CountActiveSuperadmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Admin{}).
		Where("role = ? AND is_active = ?", model.AdminRoleSuperadmin, true).
		Count(&n).Error
	return n, err
}
