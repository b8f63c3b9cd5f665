package loan

import (
	"context"
	"time"

	"github.com/kassemshdy/aspire-library/internal/authz"
	domain "github.com/kassemshdy/aspire-library/internal/domain/loan"
	"github.com/kassemshdy/aspire-library/internal/dto"
	"github.com/kassemshdy/aspire-library/internal/httpresp"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListLoans struct {
	repo domain.Repository
	now  func() time.Time
}

func NewListLoans(repo domain.Repository, now func() time.Time) *ListLoans {
	return &ListLoans{repo: repo, now: now}
}

// Execute lists the principal's own loans, or every loan for staff.
func (uc *ListLoans) Execute(
	ctx context.Context,
	p authz.Principal,
	page, pageSize int,
) (httpresp.PageResponse[dto.LoanListDTO], error) {

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	f := domain.ListFilter{Page: page, PageSize: pageSize}
	if !p.CanViewAllLoans() {
		f.UserID = p.UserID
	}

	rows, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return httpresp.PageResponse[dto.LoanListDTO]{}, err
	}

	MarkOverdue(rows, uc.now())
	if rows == nil {
		rows = []dto.LoanListDTO{}
	}

	return httpresp.NewPage(rows, total, page, pageSize), nil
}

func MarkOverdue(rows []dto.LoanListDTO, now time.Time) {
	for i := range rows {
		rows[i].Overdue = domain.IsOverdue(rows[i].Status, rows[i].DueAt, now)
	}
}
