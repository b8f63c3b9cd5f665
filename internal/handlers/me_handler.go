package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/middleware"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user := middleware.UserFrom(c)
	if user == nil {
		httperr.Unauthorized(c, "user_not_in_context", "Not signed in")
		return
	}

	p := middleware.PrincipalFrom(c)

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"permissions": gin.H{
			"manageBooks":   p.CanManageBooks(),
			"viewAllLoans":  p.CanViewAllLoans(),
			"viewAudit":     p.CanViewAudit(),
			"changeRoles":   p.CanChangeRoles(),
			"adviseCatalog": p.CanAdviseCatalog(),
		},
	})
}
