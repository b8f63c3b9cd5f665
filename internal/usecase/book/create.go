package book

import (
	"context"

	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/authz"
	domain "github.com/kassemshdy/aspire-library/internal/domain/book"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

type CreateBook struct {
	db    *gorm.DB
	repo  domain.Repository
	audit audit.Recorder
}

func NewCreateBook(db *gorm.DB, repo domain.Repository, audit audit.Recorder) *CreateBook {
	return &CreateBook{db: db, repo: repo, audit: audit}
}

func (uc *CreateBook) Execute(ctx context.Context, p authz.Principal, in Input) (*models.Book, error) {
	if err := authz.RequireManageBooks(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	b := &models.Book{Status: string(domain.StatusAvailable)}
	in.apply(b)

	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uc.repo.WithTx(tx).Create(ctx, b); err != nil {
			return err
		}
		return uc.audit.Record(tx, audit.Entry{
			Action:     audit.ActionBookCreate,
			EntityType: audit.EntityBook,
			EntityID:   b.ID,
			UserID:     p.UserID,
			Metadata:   b,
		})
	})
	if err != nil {
		return nil, httperr.FromStoreError(err)
	}

	return b, nil
}

type UpdateBook struct {
	db    *gorm.DB
	repo  domain.Repository
	audit audit.Recorder
}

func NewUpdateBook(db *gorm.DB, repo domain.Repository, audit audit.Recorder) *UpdateBook {
	return &UpdateBook{db: db, repo: repo, audit: audit}
}

// Execute replaces the editable fields. Status is untouched.
func (uc *UpdateBook) Execute(ctx context.Context, p authz.Principal, id string, in Input) (*models.Book, error) {
	if err := authz.RequireManageBooks(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var b *models.Book
	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := uc.repo.WithTx(tx)

		var err error
		if b, err = lockBook(ctx, repo, id); err != nil {
			return err
		}

		in.apply(b)
		if err := repo.Save(ctx, b); err != nil {
			return err
		}

		return uc.audit.Record(tx, audit.Entry{
			Action:     audit.ActionBookUpdate,
			EntityType: audit.EntityBook,
			EntityID:   b.ID,
			UserID:     p.UserID,
			Metadata:   b,
		})
	})
	if err != nil {
		return nil, httperr.FromStoreError(err)
	}

	return b, nil
}
