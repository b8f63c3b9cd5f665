package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/config"
	dbpkg "github.com/kassemshdy/aspire-library/internal/db"
	infraRepo "github.com/kassemshdy/aspire-library/internal/infra/repository"
	"github.com/kassemshdy/aspire-library/internal/logging"
	"github.com/kassemshdy/aspire-library/internal/timezone"
	ucUser "github.com/kassemshdy/aspire-library/internal/usecase/user"
)

type opener func() (*gorm.DB, error)

func newRootCmd(cfg *config.Config, open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Operator tasks for the library service",
		SilenceUsage:  true,
	}

	root.AddCommand(
		newMigrateCmd(open),
		newSeedCmd(cfg, open),
		newEnsureAdminCmd(cfg, open),
		newResetCmd(open),
	)
	return root
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := dbpkg.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newSeedCmd(cfg *config.Config, open opener) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample users, books and loans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := dbpkg.Migrate(db); err != nil {
				return err
			}

			log := logging.New(cfg.LogLevel)
			defer func() { _ = log.Sync() }()

			res, err := dbpkg.Seed(db, audit.New(), force, timezone.NowIn(cfg.Timezone))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Skipped {
				fmt.Fprintf(out, "catalog already has %d books, nothing seeded (use --force to reseed)\n", res.Books)
				return nil
			}

			log.Info("database seeded",
				zap.Int("users", res.Users),
				zap.Int("books", res.Books),
				zap.Int("open_loans", res.OpenLoans),
				zap.Int("closed_loans", res.ClosedLoans),
			)
			fmt.Fprintf(out, "seeded %d users, %d books, %d open and %d returned loans (password %q)\n",
				res.Users, res.Books, res.OpenLoans, res.ClosedLoans, dbpkg.SeedPassword)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "clear all rows and reseed even when books exist")
	return cmd
}

func newEnsureAdminCmd(cfg *config.Config, open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-admin",
		Short: "Promote ADMIN_EMAILS, or the earliest user when no admin exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}

			uc := ucUser.NewEnsureInitialAdmin(
				db,
				infraRepo.NewUserGormRepository(db),
				audit.New(),
				cfg.AdminEmails,
			)

			promoted, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(promoted) == 0 {
				fmt.Fprintln(out, "no changes")
				return nil
			}
			for _, u := range promoted {
				fmt.Fprintf(out, "promoted %s to ADMIN\n", u.Email)
			}
			return nil
		},
	}
}

func newResetCmd(open opener) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every row from every table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}

			db, err := open()
			if err != nil {
				return err
			}
			if err := dbpkg.Reset(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all rows deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
