package audit

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/dto"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 200
)

type Filter struct {
	Action     string
	EntityType string
	Limit      int
}

type Reader struct {
	db *gorm.DB
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// List returns the newest entries first, joined with the acting user.
func (r *Reader) List(ctx context.Context, f Filter) ([]dto.AuditEntryDTO, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	q := r.db.WithContext(ctx).
		Table("audit_logs").
		Select(`audit_logs.id, audit_logs.action, audit_logs.entity_type, audit_logs.entity_id,
			audit_logs.user_id, audit_logs.metadata, audit_logs.created_at,
			users.name AS user_name, users.email AS user_email`).
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id")

	if f.Action != "" {
		q = q.Where("audit_logs.action = ?", f.Action)
	}
	if f.EntityType != "" {
		q = q.Where("audit_logs.entity_type = ?", f.EntityType)
	}

	var rows []dto.AuditEntryDTO
	if err := q.
		Order("audit_logs.created_at DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list audit logs")
	}

	for i := range rows {
		if rows[i].UserName == nil {
			system := "System"
			rows[i].UserName = &system
		}
	}

	return rows, nil
}
