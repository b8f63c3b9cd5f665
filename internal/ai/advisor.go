package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kassemshdy/aspire-library/internal/httperr"
)

const (
	OpDescription = "generate_description"
	OpSearch      = "search"
	OpRecommend   = "recommend"
	OpDiscover    = "discover"
	OpPurchase    = "purchase_recommendations"

	maxSimilar         = 3
	maxSuggestions     = 5
	maxRecommendations = 5
)

type DescriptionRequest struct {
	Title    string
	Author   string
	Category string
	Year     *int
}

type YearRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

type SearchParams struct {
	SearchTerms []string   `json:"searchTerms"`
	Category    *string    `json:"category,omitempty"`
	YearRange   *YearRange `json:"yearRange,omitempty"`
}

type CatalogEntry struct {
	Title    string
	Author   string
	Category string
}

type Suggestion struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Year     *int   `json:"year,omitempty"`
	Reason   string `json:"reason"`
}

type PopularBook struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	LoanCount int64  `json:"loanCount"`
}

type PurchaseRecommendation struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// Advisor builds prompts, calls the provider and parses replies. Replies
// that cannot be parsed degrade to empty or default results.
type Advisor struct {
	provider TextGenerationProvider
	observer Observer
}

func NewAdvisor(provider TextGenerationProvider, observer Observer) *Advisor {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Advisor{provider: provider, observer: observer}
}

func (a *Advisor) generate(ctx context.Context, op, prompt string, maxTokens int) (string, error) {
	out, err := a.provider.Generate(ctx, prompt, maxTokens)
	if err == nil {
		return out, nil
	}

	a.observer.ObserveAI(op, OutcomeError)
	if httperr.KindOf(err) != "" {
		return "", err
	}
	return "", httperr.Upstream("ai_request_failed", "The AI provider request failed: "+err.Error())
}

func (a *Advisor) done(op string, parsed bool) {
	if parsed {
		a.observer.ObserveAI(op, OutcomeOK)
		return
	}
	a.observer.ObserveAI(op, OutcomeFallback)
}

// ===============================
// Description
// ===============================

func (a *Advisor) GenerateDescription(ctx context.Context, req DescriptionRequest) (string, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
		return "", httperr.Validation("title_author_required", "Title and author are required")
	}

	var b strings.Builder
	b.WriteString("Generate a concise, engaging book description (2-3 sentences) for:\n")
	fmt.Fprintf(&b, "Title: %s\nAuthor: %s\n", req.Title, req.Author)
	if req.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", req.Category)
	}
	if req.Year != nil {
		fmt.Fprintf(&b, "Published: %d\n", *req.Year)
	}
	b.WriteString("\nWrite a professional description that would appear on a library catalog.")

	out, err := a.generate(ctx, OpDescription, b.String(), 200)
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	a.done(OpDescription, out != "")
	return out, nil
}

// ===============================
// Natural language search
// ===============================

func (a *Advisor) ParseSearch(ctx context.Context, query string, categories []string) (SearchParams, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchParams{}, httperr.Validation("query_required", "Query is required")
	}

	prompt := fmt.Sprintf(`Given this natural language book search query: %q

Extract structured search parameters:
1. Key search terms for title/author
2. Category if mentioned (must be from: %s)
3. Year range if mentioned

Respond ONLY with valid JSON in this format:
{
  "searchTerms": ["term1", "term2"],
  "category": "category or null",
  "yearRange": { "min": year or null, "max": year or null }
}`, query, strings.Join(categories, ", "))

	out, err := a.generate(ctx, OpSearch, prompt, 300)
	if err != nil {
		return SearchParams{}, err
	}

	var parsed SearchParams
	if !decodeObject(out, &parsed) {
		a.done(OpSearch, false)
		return SearchParams{SearchTerms: []string{query}}, nil
	}

	if parsed.SearchTerms == nil {
		parsed.SearchTerms = []string{}
	}
	parsed.Category = matchCategory(parsed.Category, categories)
	if parsed.YearRange != nil && parsed.YearRange.Min == nil && parsed.YearRange.Max == nil {
		parsed.YearRange = nil
	}

	a.done(OpSearch, true)
	return parsed, nil
}

// matchCategory keeps the model's category only if it names a known one,
// returned with the catalog's spelling.
func matchCategory(c *string, categories []string) *string {
	if c == nil {
		return nil
	}
	for _, known := range categories {
		if strings.EqualFold(strings.TrimSpace(*c), known) {
			k := known
			return &k
		}
	}
	return nil
}

// ===============================
// Similar books
// ===============================

func (a *Advisor) RecommendSimilar(ctx context.Context, book CatalogEntry, catalog []CatalogEntry) ([]string, error) {
	var lines []string
	for _, b := range catalog {
		line := fmt.Sprintf("- %q by %s", b.Title, b.Author)
		if b.Category != "" {
			line += " (" + b.Category + ")"
		}
		lines = append(lines, line)
	}

	prompt := fmt.Sprintf(`Given the book %q by %s, recommend up to 3 similar books from this catalog:

%s

Return ONLY a JSON array of book titles, e.g.: ["Title 1", "Title 2", "Title 3"]`,
		book.Title, book.Author, strings.Join(lines, "\n"))

	out, err := a.generate(ctx, OpRecommend, prompt, 200)
	if err != nil {
		return nil, err
	}

	var titles []string
	if !decodeArray(out, &titles) {
		a.done(OpRecommend, false)
		return []string{}, nil
	}
	if len(titles) > maxSimilar {
		titles = titles[:maxSimilar]
	}

	a.done(OpRecommend, true)
	return titles, nil
}

// ===============================
// Discovery
// ===============================

func (a *Advisor) Discover(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, httperr.Validation("query_required", "Query is required")
	}

	prompt := fmt.Sprintf(`A librarian is looking for books to add to the collection: %q

Suggest up to %d real, published books that match this request.

Respond ONLY with a JSON array in this format:
[
  {"title": "...", "author": "...", "category": "...", "year": 2020, "reason": "one sentence on why it fits"}
]`, query, maxSuggestions)

	out, err := a.generate(ctx, OpDiscover, prompt, 1000)
	if err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	if !decodeArray(out, &suggestions) {
		a.done(OpDiscover, false)
		return []Suggestion{}, nil
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	a.done(OpDiscover, true)
	return suggestions, nil
}

// ===============================
// Purchase recommendations
// ===============================

func (a *Advisor) RecommendPurchases(ctx context.Context, popular []PopularBook, categories []string) ([]PurchaseRecommendation, error) {
	var lines []string
	for _, b := range popular {
		lines = append(lines, fmt.Sprintf("- %q by %s (%s): %d loans", b.Title, b.Author, b.Category, b.LoanCount))
	}
	if len(lines) == 0 {
		lines = append(lines, "- no loans recorded yet")
	}

	prompt := fmt.Sprintf(`You advise a library on acquisitions. These are its most borrowed books:

%s

Existing categories: %s

Recommend up to %d books the library does not have yet and would likely be popular with these readers.

Respond ONLY with a JSON array in this format:
[
  {"title": "...", "author": "...", "category": "...", "reason": "one sentence"}
]`, strings.Join(lines, "\n"), strings.Join(categories, ", "), maxRecommendations)

	out, err := a.generate(ctx, OpPurchase, prompt, 1200)
	if err != nil {
		return nil, err
	}

	var recs []PurchaseRecommendation
	if !decodeArray(out, &recs) {
		a.done(OpPurchase, false)
		return []PurchaseRecommendation{}, nil
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	a.done(OpPurchase, true)
	return recs, nil
}
