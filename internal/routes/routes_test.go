package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/ai"
	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/config"
	"github.com/kassemshdy/aspire-library/internal/infra/imaging"
	infraRepo "github.com/kassemshdy/aspire-library/internal/infra/repository"
	"github.com/kassemshdy/aspire-library/internal/metrics"
	"github.com/kassemshdy/aspire-library/internal/testutil"
	ucUser "github.com/kassemshdy/aspire-library/internal/usecase/user"
)

type client struct {
	t  *testing.T
	r  *gin.Engine
	db *gorm.DB
}

func newClient(t *testing.T) *client {
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:      db,
		Config:  &config.Config{JWTSecret: "test-secret"},
		Log:     zap.NewNop(),
		Metrics: metrics.New(),
		Encoder: imaging.NewWebPEncoder(),
		AI:      ai.Unconfigured{},
		Now:     testutil.FixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	})
	return &client{t: t, r: r, db: db}
}

func (c *client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	c.r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type authBody struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Token string `json:"token"`
}

func (c *client) register(name, email string) authBody {
	c.t.Helper()

	rec := c.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authBody](c.t, rec)
}

// bootstrapAdmin runs the provisioning step that the operator CLI performs.
func (c *client) bootstrapAdmin() {
	c.t.Helper()

	uc := ucUser.NewEnsureInitialAdmin(c.db, infraRepo.NewUserGormRepository(c.db), audit.New(), nil)
	promoted, err := uc.Execute(context.Background())
	require.NoError(c.t, err)
	require.Len(c.t, promoted, 1)
}

func TestLoanLifecycleOverHTTP(t *testing.T) {
	c := newClient(t)

	alice := c.register("Alice", "alice@library.test")
	bob := c.register("Bob", "bob@library.test")
	assert.Equal(t, "MEMBER", alice.User.Role)
	assert.Equal(t, "MEMBER", bob.User.Role)

	rec := c.do(http.MethodPost, "/api/books", alice.Token, gin.H{"title": "Dune", "author": "Frank Herbert"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "registration never grants staff rights")

	// Tokens carry only the subject, so alice's existing token picks up the new role.
	c.bootstrapAdmin()

	rec = c.do(http.MethodPost, "/api/books", bob.Token, gin.H{"title": "Dune", "author": "Frank Herbert"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/api/books", alice.Token, gin.H{"title": "Dune", "author": "Frank Herbert"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decode[struct {
		ID string `json:"id"`
	}](t, rec)

	loanPath := "/api/books/" + book.ID + "/loan"

	rec = c.do(http.MethodPost, loanPath, bob.Token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, loanPath, alice.Token, gin.H{"action": "checkout"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "book_not_available")

	rec = c.do(http.MethodPatch, "/api/books/"+book.ID, alice.Token, gin.H{"action": "archive"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "book_checked_out")
	assert.Contains(t, rec.Body.String(), "must be returned before it can be archived")

	rec = c.do(http.MethodGet, "/api/loans", bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	loans := decode[struct {
		Items []struct {
			BookTitle string `json:"book_title"`
		} `json:"items"`
		Total int64 `json:"total"`
	}](t, rec)
	assert.Equal(t, int64(1), loans.Total)

	rec = c.do(http.MethodPost, loanPath, bob.Token, gin.H{"action": "return"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodDelete, loanPath, bob.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "book_not_checked_out")

	rec = c.do(http.MethodPost, loanPath, bob.Token, gin.H{"action": "renew"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/audit", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodGet, "/api/audit", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, action := range []string{"USER_ROLE_CHANGE", "BOOK_CREATE", "LOAN_CHECKOUT", "LOAN_RETURN"} {
		assert.Contains(t, body, action)
	}

	rec = c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `library_loan_transitions_total{action="checkout",outcome="book_not_available"} 1`)
	assert.Contains(t, rec.Body.String(), `route="/api/books/:id/loan"`)
}

func TestAuthFailures(t *testing.T) {
	c := newClient(t)
	c.register("Alice", "alice@library.test")

	rec := c.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@library.test", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ALICE@library.test", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[authBody](t, rec).Token)

	rec = c.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Dup", "email": "alice@library.test", "password": "correct-horse"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email_already_registered")

	rec = c.do(http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnconfiguredIntegrations(t *testing.T) {
	c := newClient(t)
	admin := c.register("Alice", "alice@library.test")
	c.bootstrapAdmin()

	rec := c.do(http.MethodPost, "/api/ai/search", admin.Token, gin.H{"query": "space books"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "ai_not_configured")

	rec = c.do(http.MethodPost, "/api/books", admin.Token, gin.H{"title": "Dune", "author": "Frank Herbert"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[struct {
		ID string `json:"id"`
	}](t, rec).ID

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "cover.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("not really a png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books/"+id+"/cover", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin.Token)
	out := httptest.NewRecorder()
	c.r.ServeHTTP(out, req)

	assert.Equal(t, http.StatusServiceUnavailable, out.Code)
	assert.Contains(t, out.Body.String(), "storage_not_configured")

	rec = c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
