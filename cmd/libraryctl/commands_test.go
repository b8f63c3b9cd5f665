package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/config"
	"github.com/kassemshdy/aspire-library/internal/models"
	"github.com/kassemshdy/aspire-library/internal/testutil"
)

func execute(t *testing.T, cfg *config.Config, db *gorm.DB, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd(cfg, func() (*gorm.DB, error) { return db, nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestSeedIsSkippedUnlessForced(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{LogLevel: "error", Timezone: "UTC"}

	out, err := execute(t, cfg, db, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 7 users, 26 books")

	out, err = execute(t, cfg, db, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")

	out, err = execute(t, cfg, db, "seed", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 7 users")

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(7), users)
}

func TestResetNeedsConfirmation(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateBook(t, db, "Dune", "AVAILABLE")
	cfg := &config.Config{}

	_, err := execute(t, cfg, db, "reset")
	assert.Error(t, err)

	var books int64
	require.NoError(t, db.Model(&models.Book{}).Count(&books).Error)
	assert.Equal(t, int64(1), books)

	out, err := execute(t, cfg, db, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "all rows deleted")

	require.NoError(t, db.Model(&models.Book{}).Count(&books).Error)
	assert.Zero(t, books)
}

func TestEnsureAdminPromotesConfiguredEmail(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "first", models.RoleMember)
	testutil.CreateUser(t, db, "boss", models.RoleMember)
	cfg := &config.Config{AdminEmails: []string{"boss@library.test"}}

	out, err := execute(t, cfg, db, "ensure-admin")
	require.NoError(t, err)
	assert.Contains(t, out, "promoted boss@library.test to ADMIN")

	out, err = execute(t, cfg, db, "ensure-admin")
	require.NoError(t, err)
	assert.Contains(t, out, "no changes")
}

func TestMigrate(t *testing.T) {
	out, err := execute(t, &config.Config{}, testutil.NewDB(t), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")
}
