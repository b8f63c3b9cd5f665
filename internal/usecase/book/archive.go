package book

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/authz"
	domain "github.com/kassemshdy/aspire-library/internal/domain/book"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

const (
	ActionArchive   = "archive"
	ActionUnarchive = "unarchive"
)

type SetArchived struct {
	db    *gorm.DB
	repo  domain.Repository
	audit audit.Recorder
	now   func() time.Time
}

func NewSetArchived(db *gorm.DB, repo domain.Repository, audit audit.Recorder, now func() time.Time) *SetArchived {
	return &SetArchived{db: db, repo: repo, audit: audit, now: now}
}

// Execute applies "archive" or "unarchive".
func (uc *SetArchived) Execute(ctx context.Context, p authz.Principal, id, action string) (*models.Book, error) {
	if err := authz.RequireManageBooks(p); err != nil {
		return nil, err
	}
	if action != ActionArchive && action != ActionUnarchive {
		return nil, httperr.Validation("unsupported_action", "Unsupported action")
	}

	var b *models.Book
	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := uc.repo.WithTx(tx)

		var err error
		if b, err = lockBook(ctx, repo, id); err != nil {
			return err
		}

		current := domain.Status(b.Status)
		auditAction := audit.ActionBookArchive

		if action == ActionArchive {
			if err := domain.CanArchive(current); err != nil {
				return err
			}
			now := uc.now()
			b.Status = string(domain.StatusArchived)
			b.ArchivedAt = &now
		} else {
			if err := domain.CanUnarchive(current); err != nil {
				return err
			}
			b.Status = string(domain.StatusAvailable)
			b.ArchivedAt = nil
			auditAction = audit.ActionBookUnarchive
		}

		if err := repo.Save(ctx, b); err != nil {
			return err
		}

		return uc.audit.Record(tx, audit.Entry{
			Action:     auditAction,
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
