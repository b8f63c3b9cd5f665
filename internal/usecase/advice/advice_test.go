package advice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/ai"
	"github.com/kassemshdy/aspire-library/internal/authz"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/infra/repository"
	"github.com/kassemshdy/aspire-library/internal/models"
	"github.com/kassemshdy/aspire-library/internal/testutil"
)

type cannedProvider struct {
	reply  string
	prompt string
}

func (c *cannedProvider) Generate(_ context.Context, prompt string, _ int) (string, error) {
	c.prompt = prompt
	return c.reply, nil
}

var (
	staff  = authz.Principal{UserID: "staff", Role: models.RoleLibrarian}
	member = authz.Principal{UserID: "member", Role: models.RoleMember}
)

func addLoans(t *testing.T, db *gorm.DB, bookID, userID string, n int) {
	t.Helper()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		returned := at.Add(time.Duration(i+1) * time.Hour)
		require.NoError(t, db.Create(&models.Loan{
			BookID:       bookID,
			UserID:       userID,
			CheckedOutAt: at,
			DueAt:        at.Add(14 * 24 * time.Hour),
			ReturnedAt:   &returned,
			Status:       "RETURNED",
		}).Error)
	}
}

func TestRecommendSimilarResolvesCatalogTitles(t *testing.T) {
	db := testutil.NewDB(t)
	books := repository.NewBookGormRepository(db)

	dune := testutil.CreateBook(t, db, "Dune", "AVAILABLE")
	foundation := testutil.CreateBook(t, db, "Foundation", "CHECKED_OUT")
	testutil.CreateBook(t, db, "Hidden Gem", "ARCHIVED")

	provider := &cannedProvider{reply: `["Foundation", "Not In Catalog"]`}
	uc := NewRecommendSimilar(books, ai.NewAdvisor(provider, nil))

	got, err := uc.Execute(context.Background(), dune.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, foundation.ID, got[0].ID)

	assert.Contains(t, provider.prompt, `"Foundation"`)
	assert.NotContains(t, provider.prompt, "Hidden Gem")

	_, err = uc.Execute(context.Background(), "missing")
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))

	_, err = uc.Execute(context.Background(), "")
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
}

func TestRecommendPurchasesSummarizesLoans(t *testing.T) {
	db := testutil.NewDB(t)
	books := repository.NewBookGormRepository(db)
	loans := repository.NewLoanGormRepository(db)
	reader := testutil.CreateUser(t, db, "emily", models.RoleMember)

	popular := testutil.CreateBook(t, db, "Popular", "AVAILABLE")
	quiet := testutil.CreateBook(t, db, "Quiet", "AVAILABLE")
	addLoans(t, db, popular.ID, reader.ID, 3)
	addLoans(t, db, quiet.ID, reader.ID, 1)

	provider := &cannedProvider{reply: `[{"title": "New", "author": "Someone", "category": "General", "reason": "fits"}]`}
	uc := NewRecommendPurchases(books, loans, ai.NewAdvisor(provider, nil))

	_, err := uc.Execute(context.Background(), member)
	assert.Equal(t, httperr.KindUnauthorized, httperr.KindOf(err))

	res, err := uc.Execute(context.Background(), staff)
	require.NoError(t, err)

	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, int64(4), res.BasedOn.TotalLoans)
	require.Len(t, res.BasedOn.TopBooks, 2)
	assert.Equal(t, "Popular", res.BasedOn.TopBooks[0].Title)
	assert.Equal(t, int64(3), res.BasedOn.TopBooks[0].LoanCount)
	assert.Equal(t, "General", res.BasedOn.TopBooks[0].Category)
}

func TestDiscoverIsStaffOnly(t *testing.T) {
	uc := NewDiscover(ai.NewAdvisor(&cannedProvider{reply: "[]"}, nil))

	_, err := uc.Execute(context.Background(), member, "space opera")
	assert.Equal(t, httperr.KindUnauthorized, httperr.KindOf(err))

	got, err := uc.Execute(context.Background(), staff, "space opera")
	require.NoError(t, err)
	assert.Empty(t, got)
}
