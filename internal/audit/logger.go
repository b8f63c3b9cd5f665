package audit

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/models"
)

const (
	ActionBookCreate      = "BOOK_CREATE"
	ActionBookUpdate      = "BOOK_UPDATE"
	ActionBookArchive     = "BOOK_ARCHIVE"
	ActionBookUnarchive   = "BOOK_UNARCHIVE"
	ActionBookDelete      = "BOOK_DELETE"
	ActionBookCoverUpdate = "BOOK_COVER_UPDATE"
	ActionLoanCheckout    = "LOAN_CHECKOUT"
	ActionLoanReturn      = "LOAN_RETURN"
	ActionUserRoleChange  = "USER_ROLE_CHANGE"

	EntityBook = "Book"
	EntityLoan = "Loan"
	EntityUser = "User"
)

type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     string
	Metadata   any
}

// Recorder appends an audit row using the caller's transaction, so the row
// commits or rolls back together with the mutation it describes.
type Recorder interface {
	Record(tx *gorm.DB, e Entry) error
}

type Logger struct{}

func New() *Logger {
	return &Logger{}
}

var _ Recorder = (*Logger)(nil)

func (l *Logger) Record(tx *gorm.DB, e Entry) error {
	var meta datatypes.JSON
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return errors.Wrap(err, "marshal audit metadata")
		}
		meta = datatypes.JSON(b)
	}

	row := models.AuditLog{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   optional(e.EntityID),
		UserID:     optional(e.UserID),
		Metadata:   meta,
	}

	if err := tx.Create(&row).Error; err != nil {
		return errors.Wrapf(err, "append audit %s", e.Action)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
