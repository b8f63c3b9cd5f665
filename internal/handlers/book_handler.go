package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	bookdomain "github.com/kassemshdy/aspire-library/internal/domain/book"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/httpresp"
	"github.com/kassemshdy/aspire-library/internal/middleware"
	ucBook "github.com/kassemshdy/aspire-library/internal/usecase/book"
)

type BookHandler struct {
	list       *ucBook.ListBooks
	get        *ucBook.GetBook
	categories *ucBook.ListCategories
	create     *ucBook.CreateBook
	update     *ucBook.UpdateBook
	archive    *ucBook.SetArchived
	remove     *ucBook.DeleteBook
	cover      *ucBook.UploadCover
}

type BookUseCases struct {
	List       *ucBook.ListBooks
	Get        *ucBook.GetBook
	Categories *ucBook.ListCategories
	Create     *ucBook.CreateBook
	Update     *ucBook.UpdateBook
	Archive    *ucBook.SetArchived
	Delete     *ucBook.DeleteBook
	Cover      *ucBook.UploadCover
}

func NewBookHandler(uc BookUseCases) *BookHandler {
	return &BookHandler{
		list:       uc.List,
		get:        uc.Get,
		categories: uc.Categories,
		create:     uc.Create,
		update:     uc.Update,
		archive:    uc.Archive,
		remove:     uc.Delete,
		cover:      uc.Cover,
	}
}

// --------- Requests ---------

type BookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	Category      string `json:"category"`
	Language      string `json:"language"`
	PublishedYear *int   `json:"published_year"`
	Description   string `json:"description"`
}

func (r BookRequest) input() ucBook.Input {
	return ucBook.Input{
		Title:         r.Title,
		Author:        r.Author,
		ISBN:          r.ISBN,
		Category:      r.Category,
		Language:      r.Language,
		PublishedYear: r.PublishedYear,
		Description:   r.Description,
	}
}

type ArchiveRequest struct {
	Action string `json:"action" binding:"required"`
}

// --------- Handlers ---------

func (h *BookHandler) List(c *gin.Context) {
	f, err := bookdomain.NewFilter(
		c.Query("query"),
		c.Query("status"),
		c.Query("category"),
		queryInt(c, "page"),
		queryInt(c, "pageSize"),
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	page, err := h.list.Execute(c.Request.Context(), f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, page)
}

func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.get.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *BookHandler) Categories(c *gin.Context) {
	cats, err := h.categories.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, cats)
}

func (h *BookHandler) Create(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.create.Execute(c.Request.Context(), middleware.PrincipalFrom(c), req.input())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *BookHandler) Update(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.update.Execute(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), req.input())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, b)
}

// Archive handles PATCH with {"action": "archive" | "unarchive"}.
func (h *BookHandler) Archive(c *gin.Context) {
	var req ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.archive.Execute(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), req.Action)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.remove.Execute(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookHandler) UploadCover(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		httperr.BadRequest(c, "file_required", "A cover image is required in the \"file\" field")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_upload", "Could not read the uploaded file")
		return
	}
	defer f.Close()

	b, err := h.cover.Execute(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), f, fh.Size)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, b)
}

// queryInt returns 0 for missing or malformed values so callers apply
// their defaults.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
