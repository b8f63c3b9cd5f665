package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.User, error)

	Create(ctx context.Context, u *models.User) error
	UpdateRole(ctx context.Context, id, role string) error

	// -------- Bootstrap --------
	CountByRole(ctx context.Context, role string) (int64, error)
	Earliest(ctx context.Context) (*models.User, error)
}
