package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/authz"
	"github.com/kassemshdy/aspire-library/internal/infra/repository"
	"github.com/kassemshdy/aspire-library/internal/models"
	"github.com/kassemshdy/aspire-library/internal/testutil"
	ucLoan "github.com/kassemshdy/aspire-library/internal/usecase/loan"
)

func TestDashboardCounts(t *testing.T) {
	db := testutil.NewDB(t)
	loans := repository.NewLoanGormRepository(db)
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	member := testutil.CreateUser(t, db, "emily", models.RoleMember)
	p := authz.Principal{UserID: member.ID, Role: member.Role}

	b1 := testutil.CreateBook(t, db, "One", "AVAILABLE")
	b2 := testutil.CreateBook(t, db, "Two", "AVAILABLE")
	testutil.CreateBook(t, db, "Three", "AVAILABLE")
	testutil.CreateBook(t, db, "Old", "ARCHIVED")

	checkout := ucLoan.NewCheckout(db, loans, audit.New(), testutil.FixedClock(start))
	ret := ucLoan.NewReturn(db, loans, audit.New(), testutil.FixedClock(start.Add(time.Hour)))

	_, err := checkout.Execute(context.Background(), p, b1.ID)
	require.NoError(t, err)
	_, err = checkout.Execute(context.Background(), p, b2.ID)
	require.NoError(t, err)
	_, err = ret.Execute(context.Background(), p, b2.ID)
	require.NoError(t, err)

	uc := NewDashboard(db, loans, testutil.FixedClock(start.Add(20*24*time.Hour)))
	stats, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalBooks)
	assert.Equal(t, int64(2), stats.AvailableBooks)
	assert.Equal(t, int64(1), stats.CheckedOutBooks)
	assert.Equal(t, int64(1), stats.ArchivedBooks)
	assert.Equal(t, int64(2), stats.TotalLoans)
	assert.Equal(t, int64(1), stats.OpenLoans)
	assert.Equal(t, int64(1), stats.OverdueLoans)
	require.Len(t, stats.RecentLoans, 2)

	overdue := 0
	for _, l := range stats.RecentLoans {
		if l.Overdue {
			overdue++
			assert.Equal(t, "One", l.BookTitle)
		}
	}
	assert.Equal(t, 1, overdue)
}
