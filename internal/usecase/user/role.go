package user

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/authz"
	domain "github.com/kassemshdy/aspire-library/internal/domain/user"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

var errUserNotFound = httperr.NotFound("user_not_found", "User not found")

type SetRole struct {
	db    *gorm.DB
	repo  domain.Repository
	audit audit.Recorder
}

func NewSetRole(db *gorm.DB, repo domain.Repository, audit audit.Recorder) *SetRole {
	return &SetRole{db: db, repo: repo, audit: audit}
}

func (uc *SetRole) Execute(ctx context.Context, p authz.Principal, userID, role string) (*models.User, error) {
	if !p.CanChangeRoles() {
		return nil, httperr.Forbidden("forbidden", "Unauthorized: only admins can change roles")
	}
	if !authz.IsValidRole(role) {
		return nil, httperr.Validation("invalid_role", "Role must be ADMIN, LIBRARIAN or MEMBER")
	}

	var u *models.User
	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := uc.repo.WithTx(tx)

		var err error
		u, err = repo.GetByID(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUserNotFound
		}
		if err != nil {
			return err
		}
		if u.Role == role {
			return nil
		}

		if u.Role == models.RoleAdmin {
			admins, err := repo.CountByRole(ctx, models.RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return httperr.InvalidState("last_admin", "The last admin cannot be demoted")
			}
		}

		previous := u.Role
		if err := repo.UpdateRole(ctx, u.ID, role); err != nil {
			return err
		}
		u.Role = role

		return uc.audit.Record(tx, audit.Entry{
			Action:     audit.ActionUserRoleChange,
			EntityType: audit.EntityUser,
			EntityID:   u.ID,
			UserID:     p.UserID,
			Metadata: map[string]string{
				"from": previous,
				"to":   role,
			},
		})
	})
	if err != nil {
		return nil, httperr.FromStoreError(err)
	}

	return u, nil
}

type ListUsers struct {
	repo domain.Repository
}

func NewListUsers(repo domain.Repository) *ListUsers {
	return &ListUsers{repo: repo}
}

func (uc *ListUsers) Execute(ctx context.Context, p authz.Principal) ([]models.User, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	return uc.repo.List(ctx)
}

type GetUser struct {
	repo domain.Repository
}

func NewGetUser(repo domain.Repository) *GetUser {
	return &GetUser{repo: repo}
}

func (uc *GetUser) Execute(ctx context.Context, id string) (*models.User, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUserNotFound
	}
	return u, err
}
