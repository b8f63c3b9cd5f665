package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kassemshdy/aspire-library/internal/ai"
	"github.com/kassemshdy/aspire-library/internal/authz"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/infra/repository"
	"github.com/kassemshdy/aspire-library/internal/middleware"
	"github.com/kassemshdy/aspire-library/internal/models"
	"github.com/kassemshdy/aspire-library/internal/testutil"
	ucAdvice "github.com/kassemshdy/aspire-library/internal/usecase/advice"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedProvider string

func (f fixedProvider) Generate(context.Context, string, int) (string, error) {
	return string(f), nil
}

func jsonContext(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestGenerateDescription(t *testing.T) {
	h := NewAIHandler(ai.NewAdvisor(fixedProvider("A desert epic."), nil), nil, nil, nil, nil)

	c, rec := jsonContext(http.MethodPost, `{"title": "Dune", "author": "Frank Herbert", "year": 1965}`)
	h.GenerateDescription(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"description": "A desert epic."}`, rec.Body.String())

	c, rec = jsonContext(http.MethodPost, `{"title": "Dune"}`)
	h.GenerateDescription(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title_author_required")
}

func TestRecommendBindsSnakeCaseBody(t *testing.T) {
	db := testutil.NewDB(t)
	dune := testutil.CreateBook(t, db, "Dune", "AVAILABLE")
	testutil.CreateBook(t, db, "Emma", "AVAILABLE")

	advisor := ai.NewAdvisor(fixedProvider(`["Emma"]`), nil)
	recommend := ucAdvice.NewRecommendSimilar(repository.NewBookGormRepository(db), advisor)
	h := NewAIHandler(advisor, nil, recommend, nil, nil)

	c, rec := jsonContext(http.MethodPost, `{"book_id": "`+dune.ID+`"}`)
	h.Recommend(c)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"Emma"`)

	c, rec = jsonContext(http.MethodPost, `{"bookId": "`+dune.ID+`"}`)
	h.Recommend(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "book_id_required")
}

type outcomeRecorder struct {
	got []string
}

func (o *outcomeRecorder) ObserveLoan(action, outcome string) {
	o.got = append(o.got, action+":"+outcome)
}

func TestLoanObserveLabelsOutcome(t *testing.T) {
	obs := &outcomeRecorder{}
	h := &LoanHandler{observer: obs}

	h.observe(ActionCheckout, nil)
	h.observe(ActionCheckout, httperr.InvalidState("book_not_available", "Book is not available"))
	h.observe(ActionReturn, assert.AnError)

	assert.Equal(t, []string{
		"checkout:ok",
		"checkout:book_not_available",
		"return:error",
	}, obs.got)
}

func TestGetMe(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/me", nil)

	NewMeHandler().GetMe(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	c.Set(middleware.ContextUser, &models.User{ID: "u1", Name: "Sarah", Role: models.RoleLibrarian})
	c.Set(middleware.ContextPrincipal, authz.Principal{UserID: "u1", Role: models.RoleLibrarian})

	NewMeHandler().GetMe(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"manageBooks":true`)
	assert.Contains(t, rec.Body.String(), `"viewAudit":false`)
}

func TestQueryInt(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&pageSize=abc", nil)

	assert.Equal(t, 3, queryInt(c, "page"))
	assert.Equal(t, 0, queryInt(c, "pageSize"))
	assert.Equal(t, 0, queryInt(c, "missing"))
}
