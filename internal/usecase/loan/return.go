package loan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/authz"
	bookdomain "github.com/kassemshdy/aspire-library/internal/domain/book"
	domain "github.com/kassemshdy/aspire-library/internal/domain/loan"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

type Return struct {
	db    *gorm.DB
	repo  domain.Repository
	audit audit.Recorder
	now   func() time.Time
}

func NewReturn(
	db *gorm.DB,
	repo domain.Repository,
	audit audit.Recorder,
	now func() time.Time,
) *Return {
	return &Return{
		db:    db,
		repo:  repo,
		audit: audit,
		now:   now,
	}
}

// Execute closes the open loan on the book. Staff may close any loan,
// members only their own.
func (uc *Return) Execute(
	ctx context.Context,
	p authz.Principal,
	bookID string,
) (*models.Loan, error) {

	var loan *models.Loan

	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := uc.repo.WithTx(tx)

		book, err := repo.GetBookForUpdate(ctx, bookID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errBookNotFound
		}
		if err != nil {
			return err
		}

		if err := bookdomain.CanReturn(bookdomain.Status(book.Status)); err != nil {
			return err
		}

		loan, err = repo.FindOpenLoan(ctx, book.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.InvalidState("no_active_loan", "No active loan found for this book")
		}
		if err != nil {
			return err
		}

		if !p.CanCloseLoan(loan.UserID) {
			return httperr.Forbidden("not_borrower", "Unauthorized: You can only return books you checked out")
		}

		domain.Close(loan, uc.now())
		if err := repo.CloseLoan(ctx, loan); err != nil {
			return err
		}

		ok, err := repo.TransitionBook(ctx, book.ID,
			string(bookdomain.StatusCheckedOut), string(bookdomain.StatusAvailable))
		if err != nil {
			return err
		}
		if !ok {
			return bookdomain.CanReturn(bookdomain.StatusAvailable)
		}

		return uc.audit.Record(tx, audit.Entry{
			Action:     audit.ActionLoanReturn,
			EntityType: audit.EntityLoan,
			EntityID:   loan.ID,
			UserID:     p.UserID,
			Metadata:   loan,
		})
	})
	if err != nil {
		return nil, httperr.FromStoreError(err)
	}

	return loan, nil
}
