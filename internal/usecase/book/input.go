package book

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	domain "github.com/kassemshdy/aspire-library/internal/domain/book"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

var errBookNotFound = httperr.NotFound("book_not_found", "Book not found")

// Input is the editable part of a book. Empty optional strings are stored as NULL.
type Input struct {
	Title         string
	Author        string
	ISBN          string
	Category      string
	Language      string
	PublishedYear *int
	Description   string
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return httperr.Validation("title_author_required", "Title and author are required")
	}
	return nil
}

func (in Input) apply(b *models.Book) {
	b.Title = strings.TrimSpace(in.Title)
	b.Author = strings.TrimSpace(in.Author)
	b.ISBN = nullable(in.ISBN)
	b.Category = nullable(in.Category)
	b.Language = nullable(in.Language)
	b.PublishedYear = in.PublishedYear
	b.Description = nullable(in.Description)
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func lockBook(ctx context.Context, repo domain.Repository, id string) (*models.Book, error) {
	b, err := repo.GetForUpdate(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBookNotFound
	}
	return b, err
}
