package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbpkg "github.com/kassemshdy/aspire-library/internal/db"
	"github.com/kassemshdy/aspire-library/internal/models"
)

// NewDB opens a migrated SQLite file database private to the test.
// Transactions take the write lock on BEGIN so concurrent writers queue
// behind each other the way row locks make them queue on Postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "library.db") +
		"?_busy_timeout=5000&_txlock=immediate&_foreign_keys=1"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func CreateUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()

	u := &models.User{
		Name:  name,
		Email: name + "@library.test",
		Role:  role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateBook(t *testing.T, db *gorm.DB, title, status string) *models.Book {
	t.Helper()

	b := &models.Book{
		Title:  title,
		Author: "Test Author",
		Status: status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func ReloadBook(t *testing.T, db *gorm.DB, id string) *models.Book {
	t.Helper()

	var b models.Book
	require.NoError(t, db.First(&b, "id = ?", id).Error)
	return &b
}

func CountLoans(t *testing.T, db *gorm.DB, bookID, status string) int64 {
	t.Helper()

	var n int64
	q := db.Model(&models.Loan{}).Where("book_id = ?", bookID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func AuditActions(t *testing.T, db *gorm.DB) []string {
	t.Helper()

	var actions []string
	require.NoError(t, db.Model(&models.AuditLog{}).Order("created_at ASC").Pluck("action", &actions).Error)
	return actions
}

// FixedClock returns a clock frozen at t.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
