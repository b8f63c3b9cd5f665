package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/kassemshdy/aspire-library/internal/domain/book"
	"github.com/kassemshdy/aspire-library/internal/models"
)

type BookGormRepository struct {
	db *gorm.DB
}

func NewBookGormRepository(db *gorm.DB) *BookGormRepository {
	return &BookGormRepository{db: db}
}

func (r *BookGormRepository) WithTx(tx *gorm.DB) domain.Repository {
	return &BookGormRepository{db: tx}
}

// --------------------------------------------------
// Read
// --------------------------------------------------

func (r *BookGormRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "get book %s", id)
	}
	return &b, nil
}

// GetForUpdate row-locks the book on Postgres. SQLite has no row locks and
// relies on the immediate transaction lock instead.
func (r *BookGormRepository) GetForUpdate(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "lock book %s", id)
	}
	return &b, nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *BookGormRepository) List(ctx context.Context, f domain.Filter) ([]models.Book, int64, error) {
	statuses := make([]string, 0, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses = append(statuses, string(s))
	}

	q := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("status IN ?", statuses)

	if f.Query != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(f.Query)) + "%"
		q = q.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\' OR `+
				`LOWER(COALESCE(isbn, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(category, '')) LIKE ? ESCAPE '\'`,
			like, like, like, like,
		)
	}

	if f.Category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(f.Category))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count books")
	}

	var books []models.Book
	if err := q.
		Order("created_at DESC").
		Limit(f.PageSize).
		Offset(f.Offset()).
		Find(&books).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list books")
	}

	return books, total, nil
}

func (r *BookGormRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	if err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &cats).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return cats, nil
}

func (r *BookGormRepository) Sample(ctx context.Context, excludeID string, limit int) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.WithContext(ctx).
		Where("id <> ? AND status IN ?", excludeID, []string{
			string(domain.StatusAvailable),
			string(domain.StatusCheckedOut),
		}).
		Order("created_at DESC").
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, errors.Wrap(err, "sample books")
	}
	return books, nil
}

func (r *BookGormRepository) FindByTitles(ctx context.Context, titles []string, limit int) ([]models.Book, error) {
	if len(titles) == 0 {
		return []models.Book{}, nil
	}

	var books []models.Book
	if err := r.db.WithContext(ctx).
		Where("title IN ?", titles).
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, errors.Wrap(err, "find books by title")
	}
	return books, nil
}

// --------------------------------------------------
// Write
// --------------------------------------------------

func (r *BookGormRepository) Create(ctx context.Context, b *models.Book) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(b).Error, "create book")
}

func (r *BookGormRepository) Save(ctx context.Context, b *models.Book) error {
	return errors.Wrapf(r.db.WithContext(ctx).Save(b).Error, "save book %s", b.ID)
}

func (r *BookGormRepository) Delete(ctx context.Context, id string) error {
	return errors.Wrapf(
		r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id).Error,
		"delete book %s", id,
	)
}

func (r *BookGormRepository) DeleteLoanHistory(ctx context.Context, bookID string) error {
	return errors.Wrapf(
		r.db.WithContext(ctx).Where("book_id = ?", bookID).Delete(&models.Loan{}).Error,
		"delete loans of book %s", bookID,
	)
}

// Compile-time check
var _ domain.Repository = (*BookGormRepository)(nil)
