package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kassemshdy/aspire-library/internal/authz"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/httpresp"
	"github.com/kassemshdy/aspire-library/internal/middleware"
	"github.com/kassemshdy/aspire-library/internal/models"
	ucLoan "github.com/kassemshdy/aspire-library/internal/usecase/loan"
)

const (
	ActionCheckout = "checkout"
	ActionReturn   = "return"
)

type LoanObserver interface {
	ObserveLoan(action, outcome string)
}

type LoanHandler struct {
	checkout *ucLoan.Checkout
	ret      *ucLoan.Return
	list     *ucLoan.ListLoans
	observer LoanObserver
}

func NewLoanHandler(
	checkout *ucLoan.Checkout,
	ret *ucLoan.Return,
	list *ucLoan.ListLoans,
	observer LoanObserver,
) *LoanHandler {
	return &LoanHandler{
		checkout: checkout,
		ret:      ret,
		list:     list,
		observer: observer,
	}
}

type LoanRequest struct {
	Action string `json:"action"`
}

// Transition handles POST /books/:id/loan. A missing body or action means
// checkout.
func (h *LoanHandler) Transition(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	switch req.Action {
	case "", ActionCheckout:
		h.run(c, ActionCheckout, h.checkout.Execute)
	case ActionReturn:
		h.run(c, ActionReturn, h.ret.Execute)
	default:
		httperr.BadRequest(c, "invalid_action", "Action must be \"checkout\" or \"return\"")
	}
}

// Return handles DELETE /books/:id/loan.
func (h *LoanHandler) Return(c *gin.Context) {
	h.run(c, ActionReturn, h.ret.Execute)
}

type loanTransition func(ctx context.Context, p authz.Principal, bookID string) (*models.Loan, error)

func (h *LoanHandler) run(c *gin.Context, action string, fn loanTransition) {
	loan, err := fn(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	h.observe(action, err)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	status := http.StatusOK
	if action == ActionCheckout {
		status = http.StatusCreated
	}
	c.JSON(status, loan)
}

func (h *LoanHandler) observe(action string, err error) {
	if h.observer == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = httperr.CodeOf(err)
		if outcome == "" {
			outcome = "error"
		}
	}
	h.observer.ObserveLoan(action, outcome)
}

func (h *LoanHandler) List(c *gin.Context) {
	page, err := h.list.Execute(
		c.Request.Context(),
		middleware.PrincipalFrom(c),
		queryInt(c, "page"),
		queryInt(c, "pageSize"),
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, page)
}
