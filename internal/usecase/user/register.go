package user

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	domain "github.com/kassemshdy/aspire-library/internal/domain/user"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
	"github.com/kassemshdy/aspire-library/internal/validators"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type Register struct {
	db   *gorm.DB
	repo domain.Repository
	// resolver is nil unless email domains are checked.
	resolver validators.Resolver
}

func NewRegister(db *gorm.DB, repo domain.Repository, resolver validators.Resolver) *Register {
	return &Register{
		db:       db,
		repo:     repo,
		resolver: resolver,
	}
}

// Execute creates a MEMBER. Self-registration never grants a higher role,
// whatever the email; promotions go through EnsureInitialAdmin or SetRole.
func (uc *Register) Execute(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := validators.NormalizeEmail(in.Email)

	if name == "" {
		return nil, httperr.Validation("name_required", "Name is required")
	}
	if !validators.IsEmailFormatValid(email) {
		return nil, httperr.Validation("invalid_email", "Email address is not valid")
	}
	if len(in.Password) < 8 {
		return nil, httperr.Validation("weak_password", "Password must be at least 8 characters")
	}
	if uc.resolver != nil && !validators.EmailDomainResolves(ctx, uc.resolver, email) {
		return nil, httperr.Validation("invalid_email_domain", "The email domain does not seem to exist")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	var u *models.User
	err = uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := uc.repo.WithTx(tx)

		taken, err := repo.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return httperr.Validation("email_already_registered", "An account with this email already exists")
		}

		u = &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hashed),
			Role:         models.RoleMember,
		}
		return repo.Create(ctx, u)
	})
	if err != nil {
		return nil, httperr.FromStoreError(err)
	}

	return u, nil
}

type Login struct {
	repo domain.Repository
}

func NewLogin(repo domain.Repository) *Login {
	return &Login{repo: repo}
}

// Execute checks credentials. It never changes the user's role.
func (uc *Login) Execute(ctx context.Context, email, password string) (*models.User, error) {
	u, err := uc.repo.GetByEmail(ctx, validators.NormalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
