package book

import (
	"context"

	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/models"
)

type Repository interface {
	// WithTx binds the repository to an open transaction.
	WithTx(tx *gorm.DB) Repository

	// -------- Read --------
	GetByID(ctx context.Context, id string) (*models.Book, error)
	GetForUpdate(ctx context.Context, id string) (*models.Book, error)
	List(ctx context.Context, f Filter) ([]models.Book, int64, error)
	Categories(ctx context.Context) ([]string, error)
	// Sample returns up to limit circulating books other than excludeID.
	Sample(ctx context.Context, excludeID string, limit int) ([]models.Book, error)
	FindByTitles(ctx context.Context, titles []string, limit int) ([]models.Book, error)

	// -------- Write --------
	Create(ctx context.Context, b *models.Book) error
	Save(ctx context.Context, b *models.Book) error
	Delete(ctx context.Context, id string) error
	DeleteLoanHistory(ctx context.Context, bookID string) error
}
