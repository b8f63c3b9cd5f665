package user

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	domain "github.com/kassemshdy/aspire-library/internal/domain/user"
	"github.com/kassemshdy/aspire-library/internal/models"
)

// EnsureInitialAdmin promotes the configured admin emails and, if the
// system still has no admin, the earliest registered user. Running it
// again changes nothing.
type EnsureInitialAdmin struct {
	db          *gorm.DB
	repo        domain.Repository
	audit       audit.Recorder
	adminEmails []string
}

func NewEnsureInitialAdmin(
	db *gorm.DB,
	repo domain.Repository,
	audit audit.Recorder,
	adminEmails []string,
) *EnsureInitialAdmin {
	return &EnsureInitialAdmin{
		db:          db,
		repo:        repo,
		audit:       audit,
		adminEmails: adminEmails,
	}
}

// Execute runs the bootstrap in its own transaction and returns the
// promoted users.
func (uc *EnsureInitialAdmin) Execute(ctx context.Context) ([]models.User, error) {
	var promoted []models.User
	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		promoted, err = uc.ExecuteTx(ctx, tx)
		return err
	})
	return promoted, err
}

// ExecuteTx runs the bootstrap inside a transaction owned by the caller.
func (uc *EnsureInitialAdmin) ExecuteTx(ctx context.Context, tx *gorm.DB) ([]models.User, error) {
	repo := uc.repo.WithTx(tx)
	var promoted []models.User

	for _, email := range uc.adminEmails {
		u, err := repo.GetByEmail(ctx, email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if u.Role == models.RoleAdmin {
			continue
		}
		if err := uc.promote(ctx, tx, repo, u, "configured_admin_email"); err != nil {
			return nil, err
		}
		promoted = append(promoted, *u)
	}

	admins, err := repo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return promoted, nil
	}

	first, err := repo.Earliest(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return promoted, nil
	}
	if err != nil {
		return nil, err
	}
	if err := uc.promote(ctx, tx, repo, first, "first_user"); err != nil {
		return nil, err
	}

	return append(promoted, *first), nil
}

func (uc *EnsureInitialAdmin) promote(
	ctx context.Context,
	tx *gorm.DB,
	repo domain.Repository,
	u *models.User,
	reason string,
) error {
	previous := u.Role
	if err := repo.UpdateRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	u.Role = models.RoleAdmin

	return uc.audit.Record(tx, audit.Entry{
		Action:     audit.ActionUserRoleChange,
		EntityType: audit.EntityUser,
		EntityID:   u.ID,
		Metadata: map[string]string{
			"from":   previous,
			"to":     models.RoleAdmin,
			"reason": reason,
		},
	})
}
