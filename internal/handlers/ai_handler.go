package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kassemshdy/aspire-library/internal/ai"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/httpresp"
	"github.com/kassemshdy/aspire-library/internal/middleware"
	ucAdvice "github.com/kassemshdy/aspire-library/internal/usecase/advice"
)

type AIHandler struct {
	advisor   *ai.Advisor
	search    *ucAdvice.ParseSearch
	recommend *ucAdvice.RecommendSimilar
	discover  *ucAdvice.Discover
	purchases *ucAdvice.RecommendPurchases
}

func NewAIHandler(
	advisor *ai.Advisor,
	search *ucAdvice.ParseSearch,
	recommend *ucAdvice.RecommendSimilar,
	discover *ucAdvice.Discover,
	purchases *ucAdvice.RecommendPurchases,
) *AIHandler {
	return &AIHandler{
		advisor:   advisor,
		search:    search,
		recommend: recommend,
		discover:  discover,
		purchases: purchases,
	}
}

// --------- Requests ---------

type DescriptionRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Year     *int   `json:"year"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type RecommendRequest struct {
	BookID string `json:"book_id"`
}

// --------- Handlers ---------

func (h *AIHandler) GenerateDescription(c *gin.Context) {
	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	description, err := h.advisor.GenerateDescription(c.Request.Context(), ai.DescriptionRequest{
		Title:    req.Title,
		Author:   req.Author,
		Category: req.Category,
		Year:     req.Year,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{"description": description})
}

func (h *AIHandler) Search(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	params, err := h.search.Execute(c.Request.Context(), req.Query)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, params)
}

func (h *AIHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	books, err := h.recommend.Execute(c.Request.Context(), req.BookID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{"recommendations": books})
}

func (h *AIHandler) Discover(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	suggestions, err := h.discover.Execute(c.Request.Context(), middleware.PrincipalFrom(c), req.Query)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{"suggestions": suggestions})
}

func (h *AIHandler) PurchaseRecommendations(c *gin.Context) {
	res, err := h.purchases.Execute(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, res)
}
