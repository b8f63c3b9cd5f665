package book

import (
	"context"

	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/authz"
	domain "github.com/kassemshdy/aspire-library/internal/domain/book"
	"github.com/kassemshdy/aspire-library/internal/httperr"
)

type DeleteBook struct {
	db    *gorm.DB
	repo  domain.Repository
	audit audit.Recorder
}

func NewDeleteBook(db *gorm.DB, repo domain.Repository, audit audit.Recorder) *DeleteBook {
	return &DeleteBook{db: db, repo: repo, audit: audit}
}

// Execute records BOOK_DELETE with the last snapshot, then removes the
// book together with its closed loan history.
func (uc *DeleteBook) Execute(ctx context.Context, p authz.Principal, id string) error {
	if err := authz.RequireManageBooks(p); err != nil {
		return err
	}

	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := uc.repo.WithTx(tx)

		b, err := lockBook(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := domain.CanDelete(domain.Status(b.Status)); err != nil {
			return err
		}

		if err := uc.audit.Record(tx, audit.Entry{
			Action:     audit.ActionBookDelete,
			EntityType: audit.EntityBook,
			EntityID:   b.ID,
			UserID:     p.UserID,
			Metadata:   b,
		}); err != nil {
			return err
		}

		if err := repo.DeleteLoanHistory(ctx, b.ID); err != nil {
			return err
		}
		return repo.Delete(ctx, b.ID)
	})

	return httperr.FromStoreError(err)
}
