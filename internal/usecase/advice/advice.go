package advice

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/ai"
	"github.com/kassemshdy/aspire-library/internal/authz"
	bookdomain "github.com/kassemshdy/aspire-library/internal/domain/book"
	loandomain "github.com/kassemshdy/aspire-library/internal/domain/loan"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

const (
	catalogSampleSize = 50
	maxRecommended    = 3
	popularSampleSize = 15
	basedOnTopBooks   = 5
	defaultCategory   = "General"
)

var errStaffOnly = httperr.Forbidden(
	"forbidden",
	"Forbidden: Only librarians and admins can use this feature",
)

// ===============================
// Similar books
// ===============================

type RecommendSimilar struct {
	books   bookdomain.Repository
	advisor *ai.Advisor
}

func NewRecommendSimilar(books bookdomain.Repository, advisor *ai.Advisor) *RecommendSimilar {
	return &RecommendSimilar{books: books, advisor: advisor}
}

// Execute asks the advisor for titles similar to bookID and resolves them
// against the catalog. Titles the catalog does not hold are dropped.
func (uc *RecommendSimilar) Execute(ctx context.Context, bookID string) ([]models.Book, error) {
	if bookID == "" {
		return nil, httperr.Validation("book_id_required", "Book ID is required")
	}

	b, err := uc.books.GetByID(ctx, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFound("book_not_found", "Book not found")
	}
	if err != nil {
		return nil, err
	}

	sample, err := uc.books.Sample(ctx, b.ID, catalogSampleSize)
	if err != nil {
		return nil, err
	}

	catalog := make([]ai.CatalogEntry, 0, len(sample))
	for _, s := range sample {
		catalog = append(catalog, ai.CatalogEntry{
			Title:    s.Title,
			Author:   s.Author,
			Category: deref(s.Category),
		})
	}

	titles, err := uc.advisor.RecommendSimilar(ctx, ai.CatalogEntry{
		Title:    b.Title,
		Author:   b.Author,
		Category: deref(b.Category),
	}, catalog)
	if err != nil {
		return nil, err
	}

	return uc.books.FindByTitles(ctx, titles, maxRecommended)
}

// ===============================
// Natural language search
// ===============================

type ParseSearch struct {
	books   bookdomain.Repository
	advisor *ai.Advisor
}

func NewParseSearch(books bookdomain.Repository, advisor *ai.Advisor) *ParseSearch {
	return &ParseSearch{books: books, advisor: advisor}
}

func (uc *ParseSearch) Execute(ctx context.Context, query string) (ai.SearchParams, error) {
	categories, err := uc.books.Categories(ctx)
	if err != nil {
		return ai.SearchParams{}, err
	}
	return uc.advisor.ParseSearch(ctx, query, categories)
}

// ===============================
// Discovery
// ===============================

type Discover struct {
	advisor *ai.Advisor
}

func NewDiscover(advisor *ai.Advisor) *Discover {
	return &Discover{advisor: advisor}
}

func (uc *Discover) Execute(ctx context.Context, p authz.Principal, query string) ([]ai.Suggestion, error) {
	if !p.CanAdviseCatalog() {
		return nil, errStaffOnly
	}
	return uc.advisor.Discover(ctx, query)
}

// ===============================
// Purchase recommendations
// ===============================

type BasedOn struct {
	TotalLoans int64            `json:"totalLoans"`
	TopBooks   []ai.PopularBook `json:"topBooks"`
}

type PurchaseResult struct {
	Recommendations []ai.PurchaseRecommendation `json:"recommendations"`
	BasedOn         BasedOn                     `json:"basedOn"`
}

type RecommendPurchases struct {
	books   bookdomain.Repository
	loans   loandomain.Repository
	advisor *ai.Advisor
}

func NewRecommendPurchases(books bookdomain.Repository, loans loandomain.Repository, advisor *ai.Advisor) *RecommendPurchases {
	return &RecommendPurchases{books: books, loans: loans, advisor: advisor}
}

func (uc *RecommendPurchases) Execute(ctx context.Context, p authz.Principal) (*PurchaseResult, error) {
	if !p.CanAdviseCatalog() {
		return nil, errStaffOnly
	}

	rows, err := uc.loans.MostBorrowed(ctx, popularSampleSize)
	if err != nil {
		return nil, err
	}

	popular := make([]ai.PopularBook, 0, len(rows))
	for _, r := range rows {
		category := deref(r.Category)
		if category == "" {
			category = defaultCategory
		}
		popular = append(popular, ai.PopularBook{
			Title:     r.Title,
			Author:    r.Author,
			Category:  category,
			LoanCount: r.LoanCount,
		})
	}

	categories, err := uc.books.Categories(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := uc.advisor.RecommendPurchases(ctx, popular, categories)
	if err != nil {
		return nil, err
	}

	total, err := uc.loans.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	top := popular
	if len(top) > basedOnTopBooks {
		top = top[:basedOnTopBooks]
	}

	return &PurchaseResult{
		Recommendations: recs,
		BasedOn: BasedOn{
			TotalLoans: total,
			TopBooks:   top,
		},
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
