package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/httpresp"
	"github.com/kassemshdy/aspire-library/internal/middleware"
	ucUser "github.com/kassemshdy/aspire-library/internal/usecase/user"
)

type UserHandler struct {
	list    *ucUser.ListUsers
	setRole *ucUser.SetRole
}

func NewUserHandler(list *ucUser.ListUsers, setRole *ucUser.SetRole) *UserHandler {
	return &UserHandler{list: list, setRole: setRole}
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.list.Execute(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, users)
}

func (h *UserHandler) SetRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	user, err := h.setRole.Execute(
		c.Request.Context(),
		middleware.PrincipalFrom(c),
		c.Param("id"),
		req.Role,
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, user)
}
