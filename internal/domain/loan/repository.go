package loan

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/dto"
	"github.com/kassemshdy/aspire-library/internal/models"
)

type ListFilter struct {
	// UserID restricts the listing to one borrower when set.
	UserID   string
	Page     int
	PageSize int
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// -------- Book side of a transition --------
	GetBookForUpdate(ctx context.Context, bookID string) (*models.Book, error)

	// TransitionBook moves the book from one status to another and reports
	// whether a row matched. false means another transaction got there first.
	TransitionBook(ctx context.Context, bookID string, from, to string) (bool, error)

	// -------- Loan rows --------
	CreateLoan(ctx context.Context, l *models.Loan) error
	FindOpenLoan(ctx context.Context, bookID string) (*models.Loan, error)
	CloseLoan(ctx context.Context, l *models.Loan) error

	// -------- Queries --------
	List(ctx context.Context, f ListFilter) ([]dto.LoanListDTO, int64, error)
	Recent(ctx context.Context, limit int) ([]dto.LoanListDTO, error)
	CountOpen(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	MostBorrowed(ctx context.Context, limit int) ([]dto.PopularBookDTO, error)
}
