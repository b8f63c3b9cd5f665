package book

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/authz"
	domain "github.com/kassemshdy/aspire-library/internal/domain/book"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

const (
	MaxCoverBytes = 5 << 20
	CoverMaxWidth = 600
)

type CoverStore interface {
	// PutCover stores a WebP image under key and returns its public URL.
	PutCover(ctx context.Context, key string, data []byte) (string, error)
}

type CoverEncoder interface {
	ToWebP(r io.Reader, maxWidth int) ([]byte, error)
}

type UploadCover struct {
	db      *gorm.DB
	repo    domain.Repository
	audit   audit.Recorder
	store   CoverStore
	encoder CoverEncoder
}

// NewUploadCover accepts a nil store; uploads then fail as unavailable.
func NewUploadCover(
	db *gorm.DB,
	repo domain.Repository,
	audit audit.Recorder,
	store CoverStore,
	encoder CoverEncoder,
) *UploadCover {
	return &UploadCover{
		db:      db,
		repo:    repo,
		audit:   audit,
		store:   store,
		encoder: encoder,
	}
}

func CoverKey(bookID string) string {
	return "covers/" + bookID + ".webp"
}

func (uc *UploadCover) Execute(
	ctx context.Context,
	p authz.Principal,
	bookID string,
	image io.Reader,
	size int64,
) (*models.Book, error) {

	if err := authz.RequireManageBooks(p); err != nil {
		return nil, err
	}
	if uc.store == nil {
		return nil, httperr.Unavailable("storage_not_configured", "Cover storage is not configured")
	}
	if size > MaxCoverBytes {
		return nil, httperr.Validation("cover_too_large", "Cover image must be 5 MiB or smaller")
	}

	if _, err := uc.repo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBookNotFound
		}
		return nil, err
	}

	webp, err := uc.encoder.ToWebP(io.LimitReader(image, MaxCoverBytes+1), CoverMaxWidth)
	if err != nil {
		return nil, httperr.Validation("invalid_image", "Cover must be a JPEG, PNG or WebP image")
	}

	url, err := uc.store.PutCover(ctx, CoverKey(bookID), webp)
	if err != nil {
		return nil, httperr.Upstream("cover_upload_failed", "Could not store the cover image")
	}

	var b *models.Book
	err = uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := uc.repo.WithTx(tx)

		var err error
		if b, err = lockBook(ctx, repo, bookID); err != nil {
			return err
		}

		b.CoverURL = &url
		if err := repo.Save(ctx, b); err != nil {
			return err
		}

		return uc.audit.Record(tx, audit.Entry{
			Action:     audit.ActionBookCoverUpdate,
			EntityType: audit.EntityBook,
			EntityID:   b.ID,
			UserID:     p.UserID,
			Metadata: map[string]any{
				"cover_url": url,
				"bytes":     len(webp),
			},
		})
	})
	if err != nil {
		return nil, httperr.FromStoreError(err)
	}

	return b, nil
}
