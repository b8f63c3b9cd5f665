package authz

import (
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

// Principal is the caller of a use case. It is built per request from the
// stored user row and never cached between requests.
type Principal struct {
	UserID string
	Role   string
}

func IsValidRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleLibrarian, models.RoleMember:
		return true
	}
	return false
}

func (p Principal) IsStaff() bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleLibrarian
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func (p Principal) CanManageBooks() bool   { return p.IsStaff() }
func (p Principal) CanViewAllLoans() bool  { return p.IsStaff() }
func (p Principal) CanViewAudit() bool     { return p.IsAdmin() }
func (p Principal) CanChangeRoles() bool   { return p.IsAdmin() }
func (p Principal) CanAdviseCatalog() bool { return p.IsStaff() }

// CanCloseLoan: staff may close any loan, members only their own.
func (p Principal) CanCloseLoan(borrowerID string) bool {
	return p.IsStaff() || (p.UserID != "" && p.UserID == borrowerID)
}

// RequireManageBooks returns the standard forbidden error for catalog writes.
func RequireManageBooks(p Principal) error {
	if !p.CanManageBooks() {
		return httperr.Forbidden("forbidden", "Unauthorized: only librarians and admins can manage books")
	}
	return nil
}

func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return httperr.Forbidden("forbidden", "Unauthorized: admin access required")
	}
	return nil
}
