package book

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	domain "github.com/kassemshdy/aspire-library/internal/domain/book"
	"github.com/kassemshdy/aspire-library/internal/httpresp"
	"github.com/kassemshdy/aspire-library/internal/models"
)

type ListBooks struct {
	repo domain.Repository
}

func NewListBooks(repo domain.Repository) *ListBooks {
	return &ListBooks{repo: repo}
}

func (uc *ListBooks) Execute(ctx context.Context, f domain.Filter) (httpresp.PageResponse[models.Book], error) {
	books, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return httpresp.PageResponse[models.Book]{}, err
	}
	if books == nil {
		books = []models.Book{}
	}
	return httpresp.NewPage(books, total, f.Page, f.PageSize), nil
}

type GetBook struct {
	repo domain.Repository
}

func NewGetBook(repo domain.Repository) *GetBook {
	return &GetBook{repo: repo}
}

func (uc *GetBook) Execute(ctx context.Context, id string) (*models.Book, error) {
	b, err := uc.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBookNotFound
	}
	return b, err
}

type ListCategories struct {
	repo domain.Repository
}

func NewListCategories(repo domain.Repository) *ListCategories {
	return &ListCategories{repo: repo}
}

func (uc *ListCategories) Execute(ctx context.Context) ([]string, error) {
	cats, err := uc.repo.Categories(ctx)
	if cats == nil {
		cats = []string{}
	}
	return cats, err
}
