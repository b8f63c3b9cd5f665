package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kassemshdy/aspire-library/internal/httperr"
)

type stubProvider struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (s *stubProvider) Generate(_ context.Context, prompt string, _ int) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveAI(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, op+":"+outcome)
}

func TestGenerateDescription(t *testing.T) {
	stub := &stubProvider{reply: "  A sweeping desert epic.\n"}
	obs := &recordingObserver{}
	year := 1965

	out, err := NewAdvisor(stub, obs).GenerateDescription(context.Background(), DescriptionRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
		Year:   &year,
	})
	require.NoError(t, err)

	assert.Equal(t, "A sweeping desert epic.", out)
	assert.Contains(t, stub.prompts[0], "Title: Dune")
	assert.Contains(t, stub.prompts[0], "Published: 1965")
	assert.NotContains(t, stub.prompts[0], "Category:")
	assert.Equal(t, []string{"generate_description:ok"}, obs.outcomes)

	_, err = NewAdvisor(stub, nil).GenerateDescription(context.Background(), DescriptionRequest{Title: "Dune"})
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
}

func TestParseSearch(t *testing.T) {
	categories := []string{"Science Fiction", "Fantasy"}

	tests := []struct {
		name  string
		reply string
		want  SearchParams
	}{
		{
			name:  "fenced json with known category",
			reply: "```json\n{\"searchTerms\": [\"space\"], \"category\": \"science fiction\", \"yearRange\": {\"min\": 1960, \"max\": null}}\n```",
			want: SearchParams{
				SearchTerms: []string{"space"},
				Category:    strPtr("Science Fiction"),
				YearRange:   &YearRange{Min: intPtr(1960)},
			},
		},
		{
			name:  "unknown category and empty range dropped",
			reply: `{"searchTerms": ["dragons"], "category": "null", "yearRange": {"min": null, "max": null}}`,
			want:  SearchParams{SearchTerms: []string{"dragons"}},
		},
		{
			name:  "malformed reply falls back to raw query",
			reply: "I think you want space books!",
			want:  SearchParams{SearchTerms: []string{"old space books"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := NewAdvisor(&stubProvider{reply: tt.reply}, nil)
			got, err := adv.ParseSearch(context.Background(), "old space books", categories)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendSimilarCapsAndDegrades(t *testing.T) {
	obs := &recordingObserver{}
	catalog := []CatalogEntry{{Title: "Foundation", Author: "Isaac Asimov", Category: "Science Fiction"}}

	adv := NewAdvisor(&stubProvider{reply: `Sure: ["A", "B", "C", "D"]`}, obs)
	titles, err := adv.RecommendSimilar(context.Background(), CatalogEntry{Title: "Dune", Author: "Frank Herbert"}, catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles)

	adv = NewAdvisor(&stubProvider{reply: "no idea"}, obs)
	titles, err = adv.RecommendSimilar(context.Background(), CatalogEntry{Title: "Dune", Author: "Frank Herbert"}, catalog)
	require.NoError(t, err)
	assert.Empty(t, titles)
	assert.NotNil(t, titles)

	assert.Equal(t, []string{"recommend:ok", "recommend:fallback"}, obs.outcomes)
}

func TestDiscoverAndPurchases(t *testing.T) {
	stub := &stubProvider{reply: `[{"title": "Hyperion", "author": "Dan Simmons", "category": "Science Fiction", "year": 1989, "reason": "Fans of Dune"}]`}
	adv := NewAdvisor(stub, nil)

	suggestions, err := adv.Discover(context.Background(), "epic space opera")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Hyperion", suggestions[0].Title)
	require.NotNil(t, suggestions[0].Year)
	assert.Equal(t, 1989, *suggestions[0].Year)

	_, err = adv.Discover(context.Background(), " ")
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	recs, err := adv.RecommendPurchases(context.Background(),
		[]PopularBook{{Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction", LoanCount: 7}},
		[]string{"Science Fiction"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, stub.prompts[len(stub.prompts)-1], `"Dune" by Frank Herbert (Science Fiction): 7 loans`)

	stub.reply = "{not json"
	recs, err = adv.RecommendPurchases(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestAdvisorErrors(t *testing.T) {
	_, err := NewAdvisor(Unconfigured{}, nil).Discover(context.Background(), "anything")
	assert.Equal(t, httperr.KindUnavailable, httperr.KindOf(err))

	_, err = NewAdvisor(&stubProvider{err: errors.New("connection reset")}, nil).
		ParseSearch(context.Background(), "anything", nil)
	assert.Equal(t, httperr.KindUpstream, httperr.KindOf(err))
}

func TestBreakerOpensAndRecovers(t *testing.T) {
	stub := &stubProvider{err: errors.New("503 from upstream")}
	b := NewBreakerProvider(stub, 2, time.Minute, 30*time.Second)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := b.Generate(ctx, "p", 10)
	assert.Error(t, err)
	assert.Equal(t, StateClosed, b.State())

	_, err = b.Generate(ctx, "p", 10)
	assert.Error(t, err)
	assert.Equal(t, StateOpen, b.State())

	_, err = b.Generate(ctx, "p", 10)
	assert.Equal(t, ErrCircuitOpen, err)
	assert.Equal(t, 2, stub.calls, "open breaker does not call the provider")

	now = now.Add(31 * time.Second)
	stub.err = nil
	stub.reply = "ok"

	out, err := b.Generate(ctx, "p", 10)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	stub := &stubProvider{err: errors.New("timeout")}
	b := NewBreakerProvider(stub, 1, time.Minute, 10*time.Second)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	_, _ = b.Generate(context.Background(), "p", 10)
	assert.Equal(t, StateOpen, b.State())

	now = now.Add(11 * time.Second)
	_, err := b.Generate(context.Background(), "p", 10)
	assert.EqualError(t, err, "timeout")
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerIgnoresBusinessErrors(t *testing.T) {
	b := NewBreakerProvider(Unconfigured{}, 1, time.Minute, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := b.Generate(context.Background(), "p", 10)
		assert.Equal(t, ErrNotConfigured, err)
	}
	assert.Equal(t, StateClosed, b.State())
}

type memoryCache struct {
	items map[string]string
	fail  bool
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if m.fail {
		return "", false, errors.New("redis down")
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	if m.fail {
		return errors.New("redis down")
	}
	m.items[key] = value
	return nil
}

func TestCachedProvider(t *testing.T) {
	stub := &stubProvider{reply: "cached answer"}
	cache := &memoryCache{items: map[string]string{}}
	p := NewCachedProvider(stub, cache, time.Hour, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := p.Generate(ctx, "same prompt", 100)
		require.NoError(t, err)
		assert.Equal(t, "cached answer", out)
	}
	assert.Equal(t, 1, stub.calls)

	_, err := p.Generate(ctx, "same prompt", 200)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls, "token budget is part of the key")

	cache.fail = true
	out, err := p.Generate(ctx, "same prompt", 100)
	require.NoError(t, err)
	assert.Equal(t, "cached answer", out)
	assert.Equal(t, 3, stub.calls)
}

func TestExtractJSON(t *testing.T) {
	raw, ok := extractJSON("Here you go:\n```json\n[1, 2]\n```", '[', ']')
	require.True(t, ok)
	assert.Equal(t, "[1, 2]", raw)

	_, ok = extractJSON("nothing here", '{', '}')
	assert.False(t, ok)

	_, ok = extractJSON("} backwards {", '{', '}')
	assert.False(t, ok)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
