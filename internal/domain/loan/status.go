package loan

import (
	"time"

	"github.com/kassemshdy/aspire-library/internal/models"
)

type Status string

const (
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusReturned   Status = "RETURNED"
)

// Period is the fixed lending policy.
const Period = 14 * 24 * time.Hour

// Open builds a new loan starting at now.
func Open(bookID, userID string, now time.Time) *models.Loan {
	return &models.Loan{
		BookID:       bookID,
		UserID:       userID,
		CheckedOutAt: now,
		DueAt:        now.Add(Period),
		Status:       string(StatusCheckedOut),
	}
}

func Close(l *models.Loan, now time.Time) {
	l.Status = string(StatusReturned)
	l.ReturnedAt = &now
}

// IsOverdue reports whether a loan with the given status and due date is
// still open past its due date at now.
func IsOverdue(status string, dueAt, now time.Time) bool {
	return status == string(StatusCheckedOut) && now.After(dueAt)
}
