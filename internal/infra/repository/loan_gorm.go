package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/kassemshdy/aspire-library/internal/domain/loan"
	"github.com/kassemshdy/aspire-library/internal/dto"
	"github.com/kassemshdy/aspire-library/internal/models"
)

type LoanGormRepository struct {
	db *gorm.DB
}

func NewLoanGormRepository(db *gorm.DB) *LoanGormRepository {
	return &LoanGormRepository{db: db}
}

func (r *LoanGormRepository) WithTx(tx *gorm.DB) domain.Repository {
	return &LoanGormRepository{db: tx}
}

// --------------------------------------------------
// Book side
// --------------------------------------------------

func (r *LoanGormRepository) GetBookForUpdate(ctx context.Context, bookID string) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", bookID).Error; err != nil {
		return nil, errors.Wrapf(err, "lock book %s", bookID)
	}
	return &b, nil
}

func (r *LoanGormRepository) TransitionBook(ctx context.Context, bookID string, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND status = ?", bookID, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "transition book %s %s->%s", bookID, from, to)
	}
	return res.RowsAffected == 1, nil
}

// --------------------------------------------------
// Loan rows
// --------------------------------------------------

func (r *LoanGormRepository) CreateLoan(ctx context.Context, l *models.Loan) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(l).Error, "create loan")
}

// FindOpenLoan returns the most recently opened loan still checked out.
func (r *LoanGormRepository) FindOpenLoan(ctx context.Context, bookID string) (*models.Loan, error) {
	var l models.Loan
	if err := r.db.WithContext(ctx).
		Where("book_id = ? AND status = ?", bookID, string(domain.StatusCheckedOut)).
		Order("checked_out_at DESC").
		First(&l).Error; err != nil {
		return nil, errors.Wrapf(err, "find open loan for book %s", bookID)
	}
	return &l, nil
}

func (r *LoanGormRepository) CloseLoan(ctx context.Context, l *models.Loan) error {
	return errors.Wrapf(
		r.db.WithContext(ctx).
			Model(l).
			Select("status", "returned_at", "updated_at").
			Updates(l).Error,
		"close loan %s", l.ID,
	)
}

// --------------------------------------------------
// Queries
// --------------------------------------------------

func (r *LoanGormRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("loans").
		Select(`loans.id, loans.book_id, books.title AS book_title, books.author AS book_author,
			loans.user_id, users.name AS borrower_name, users.email AS borrower_email,
			loans.checked_out_at, loans.due_at, loans.returned_at, loans.status`).
		Joins("JOIN books ON books.id = loans.book_id").
		Joins("JOIN users ON users.id = loans.user_id")
}

func (r *LoanGormRepository) List(ctx context.Context, f domain.ListFilter) ([]dto.LoanListDTO, int64, error) {
	count := r.db.WithContext(ctx).Model(&models.Loan{})
	q := r.joined(ctx)
	if f.UserID != "" {
		count = count.Where("user_id = ?", f.UserID)
		q = q.Where("loans.user_id = ?", f.UserID)
	}

	var total int64
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count loans")
	}

	var rows []dto.LoanListDTO
	if err := q.
		Order("loans.checked_out_at DESC").
		Limit(f.PageSize).
		Offset((f.Page - 1) * f.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list loans")
	}

	return rows, total, nil
}

func (r *LoanGormRepository) Recent(ctx context.Context, limit int) ([]dto.LoanListDTO, error) {
	var rows []dto.LoanListDTO
	if err := r.joined(ctx).
		Order("loans.checked_out_at DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "recent loans")
	}
	return rows, nil
}

func (r *LoanGormRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).Count(&n).Error
	return n, errors.Wrap(err, "count loans")
}

func (r *LoanGormRepository) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ?", string(domain.StatusCheckedOut)).
		Count(&n).Error
	return n, errors.Wrap(err, "count open loans")
}

func (r *LoanGormRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ? AND due_at < ?", string(domain.StatusCheckedOut), now).
		Count(&n).Error
	return n, errors.Wrap(err, "count overdue loans")
}

func (r *LoanGormRepository) MostBorrowed(ctx context.Context, limit int) ([]dto.PopularBookDTO, error) {
	var rows []dto.PopularBookDTO
	if err := r.db.WithContext(ctx).
		Table("loans").
		Select("books.id AS book_id, books.title, books.author, books.category, COUNT(loans.id) AS loan_count").
		Joins("JOIN books ON books.id = loans.book_id").
		Group("books.id, books.title, books.author, books.category").
		Order("loan_count DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "most borrowed books")
	}
	return rows, nil
}

// Compile-time check
var _ domain.Repository = (*LoanGormRepository)(nil)
