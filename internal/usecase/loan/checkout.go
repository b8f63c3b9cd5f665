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

var errBookNotFound = httperr.NotFound("book_not_found", "Book not found")

type Checkout struct {
	db    *gorm.DB
	repo  domain.Repository
	audit audit.Recorder
	now   func() time.Time
}

func NewCheckout(
	db *gorm.DB,
	repo domain.Repository,
	audit audit.Recorder,
	now func() time.Time,
) *Checkout {
	return &Checkout{
		db:    db,
		repo:  repo,
		audit: audit,
		now:   now,
	}
}

// Execute opens a loan for the principal. The loan row, the book status
// and the audit row commit together or not at all.
func (uc *Checkout) Execute(
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

		if err := bookdomain.CanCheckout(bookdomain.Status(book.Status)); err != nil {
			return err
		}

		ok, err := repo.TransitionBook(ctx, book.ID,
			string(bookdomain.StatusAvailable), string(bookdomain.StatusCheckedOut))
		if err != nil {
			return err
		}
		if !ok {
			return bookdomain.CanCheckout(bookdomain.StatusCheckedOut)
		}

		loan = domain.Open(book.ID, p.UserID, uc.now())
		if err := repo.CreateLoan(ctx, loan); err != nil {
			return err
		}

		return uc.audit.Record(tx, audit.Entry{
			Action:     audit.ActionLoanCheckout,
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
