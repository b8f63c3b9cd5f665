package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/httpresp"
	"github.com/kassemshdy/aspire-library/internal/middleware"
)

type AuditLogsHandler struct {
	reader *audit.Reader
}

func NewAuditLogsHandler(reader *audit.Reader) *AuditLogsHandler {
	return &AuditLogsHandler{reader: reader}
}

// List returns the newest audit entries. ADMIN only.
func (h *AuditLogsHandler) List(c *gin.Context) {
	if !middleware.PrincipalFrom(c).CanViewAudit() {
		httperr.ForbiddenJSON(c, "forbidden", "Only admins can view the audit log")
		return
	}

	entries, err := h.reader.List(c.Request.Context(), audit.Filter{
		Action:     c.Query("action"),
		EntityType: c.Query("entityType"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, entries)
}
