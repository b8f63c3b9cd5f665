package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	domain "github.com/kassemshdy/aspire-library/internal/domain/user"
	"github.com/kassemshdy/aspire-library/internal/models"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) WithTx(tx *gorm.DB) domain.Repository {
	return &UserGormRepository{db: tx}
}

func (r *UserGormRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "get user %s", id)
	}
	return &u, nil
}

func (r *UserGormRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, errors.Wrap(err, "get user by email")
	}
	return &u, nil
}

func (r *UserGormRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&n).Error; err != nil {
		return false, errors.Wrap(err, "check email")
	}
	return n > 0, nil
}

func (r *UserGormRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (r *UserGormRepository) Create(ctx context.Context, u *models.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *UserGormRepository) UpdateRole(ctx context.Context, id, role string) error {
	return errors.Wrapf(
		r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role).Error,
		"update role of %s", id,
	)
}

// --------------------------------------------------
// Bootstrap
// --------------------------------------------------

func (r *UserGormRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "count %s users", role)
	}
	return n, nil
}

func (r *UserGormRepository) Earliest(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").First(&u).Error; err != nil {
		return nil, errors.Wrap(err, "earliest user")
	}
	return &u, nil
}

// Compile-time check
var _ domain.Repository = (*UserGormRepository)(nil)
