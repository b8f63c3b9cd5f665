package stats

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	loandomain "github.com/kassemshdy/aspire-library/internal/domain/loan"
	"github.com/kassemshdy/aspire-library/internal/dto"
	"github.com/kassemshdy/aspire-library/internal/models"
	ucLoan "github.com/kassemshdy/aspire-library/internal/usecase/loan"
)

const recentLoans = 5

type Dashboard struct {
	db    *gorm.DB
	loans loandomain.Repository
	now   func() time.Time
}

func NewDashboard(db *gorm.DB, loans loandomain.Repository, now func() time.Time) *Dashboard {
	return &Dashboard{db: db, loans: loans, now: now}
}

func (uc *Dashboard) Execute(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	var counts []struct {
		Status string
		N      int64
	}
	if err := uc.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, errors.Wrap(err, "count books by status")
	}

	out := &dto.DashboardStatsDTO{}
	for _, c := range counts {
		out.TotalBooks += c.N
		switch c.Status {
		case "AVAILABLE":
			out.AvailableBooks = c.N
		case "CHECKED_OUT":
			out.CheckedOutBooks = c.N
		case "ARCHIVED":
			out.ArchivedBooks = c.N
		}
	}

	now := uc.now()
	var err error

	if out.TotalLoans, err = uc.loans.CountAll(ctx); err != nil {
		return nil, err
	}
	if out.OpenLoans, err = uc.loans.CountOpen(ctx); err != nil {
		return nil, err
	}
	if out.OverdueLoans, err = uc.loans.CountOverdue(ctx, now); err != nil {
		return nil, err
	}

	if out.RecentLoans, err = uc.loans.Recent(ctx, recentLoans); err != nil {
		return nil, err
	}
	if out.RecentLoans == nil {
		out.RecentLoans = []dto.LoanListDTO{}
	}
	ucLoan.MarkOverdue(out.RecentLoans, now)

	return out, nil
}
