package ranking

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/tb0hdan/kmu-curator/pkg/cache"
	"github.com/tb0hdan/kmu-curator/pkg/metrics"
	"github.com/tb0hdan/kmu-curator/pkg/models"
	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/relevance"
	"github.com/tb0hdan/kmu-curator/pkg/storage"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

type fakeCatalog struct {
	tools map[types.Department][]models.ToolCandidate
	calls int
}

func (f *fakeCatalog) ListApproved(_ context.Context, department types.Department) []models.ToolCandidate {
	f.calls++
	return f.tools[department]
}

type memStore struct {
	mu    sync.Mutex
	items map[string]models.CachedAnswer
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]models.CachedAnswer)}
}

func (m *memStore) GetCachedAnswer(_ context.Context, key string) (*models.CachedAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &item, nil
}

func (m *memStore) UpsertCachedAnswer(_ context.Context, answer *models.CachedAnswer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[answer.QuestionHash] = *answer
	return nil
}

func (m *memStore) DeleteCachedAnswersByDepartment(_ context.Context, department types.Department) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, item := range m.items {
		if item.Department == department {
			delete(m.items, key)
			n++
		}
	}
	return n, nil
}

func approved(id, name, url, desc string, dept types.Department) models.ToolCandidate {
	return models.ToolCandidate{
		ID:          id,
		ToolName:    name,
		SourceURL:   url,
		Description: desc,
		Department:  dept,
		Status:      types.StatusApproved,
	}
}

type ResponderTestSuite struct {
	suite.Suite
	catalog   *fakeCatalog
	metrics   *metrics.Metrics
	responder *Responder
}

func (s *ResponderTestSuite) SetupTest() {
	s.catalog = &fakeCatalog{tools: map[types.Department][]models.ToolCandidate{
		types.Marketing: {
			approved("1", "Jasper", "https://www.jasper.ai", "AI content creation for marketing teams", types.Marketing),
			approved("2", "Surfer SEO", "https://surferseo.com", "AI SEO content optimization", types.Marketing),
			approved("3", "Midjourney", "", "AI image generation", types.Marketing),
			approved("4", "Synthesia", "https://www.synthesia.io", "AI video generation platform", types.Marketing),
		},
	}}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.responder = NewResponder(s.catalog, relevance.NewScorer(relevance.DefaultWeights()), nil, zerolog.Nop(), s.metrics)
}

func (s *ResponderTestSuite) TestConcreteScenario() {
	s.catalog.tools[types.Marketing] = s.catalog.tools[types.Marketing][:1]

	resp := s.responder.Answer(context.Background(), "Welches Tool eignet sich für Content-Erstellung?", types.Marketing)

	s.True(resp.Curated)
	s.False(resp.NoCuratedData)
	s.Equal(1, resp.ToolCount)
	s.Require().NotNil(resp.Answer)
	s.Contains(*resp.Answer, "Jasper")
	s.Contains(*resp.Answer, "1 Tool(s)")
}

func (s *ResponderTestSuite) TestNoCuratedData() {
	for _, q := range []string{"", "Welches HR Tool?", "Jasper"} {
		resp := s.responder.Answer(context.Background(), q, types.HR)

		s.True(resp.NoCuratedData)
		s.Nil(resp.Answer)
		s.False(resp.Curated)
		s.Zero(resp.ToolCount)
		s.Contains(resp.Message, "HR")
	}
	s.Equal(3.0, testutil.ToFloat64(s.metrics.Answers.WithLabelValues("HR", metrics.OutcomeNoData)))
}

func (s *ResponderTestSuite) TestRankingOrder() {
	resp := s.responder.Answer(context.Background(), "Ich brauche Video Generation für Social Media", types.Marketing)

	s.Require().Len(resp.Ranked, 4)
	s.Equal("Synthesia", resp.Ranked[0].ToolName)
	for i := 1; i < len(resp.Ranked); i++ {
		s.GreaterOrEqual(resp.Ranked[i-1].Score, resp.Ranked[i].Score)
		s.Equal(i+1, resp.Ranked[i].Rank)
	}
}

func (s *ResponderTestSuite) TestNameMentionWins() {
	resp := s.responder.Answer(context.Background(), "Lohnt sich Midjourney?", types.Marketing)

	s.Require().NotEmpty(resp.Ranked)
	s.Equal("Midjourney", resp.Ranked[0].ToolName)
	s.Contains(*resp.Answer, "### 1. Midjourney ⭐ TOP-Empfehlung")
}

func (s *ResponderTestSuite) TestDeterministic() {
	q := "Welche Tools helfen beim Content Marketing?"
	first := s.responder.Answer(context.Background(), q, types.Marketing)
	for i := 0; i < 5; i++ {
		again := s.responder.Answer(context.Background(), q, types.Marketing)
		s.Equal(first.Ranked, again.Ranked)
		s.Equal(*first.Answer, *again.Answer)
	}
}

func (s *ResponderTestSuite) TestStableTies() {
	tools := []models.ToolCandidate{
		approved("a", "Aaa", "", "", types.General),
		approved("b", "Bbb", "", "", types.General),
		approved("c", "Ccc", "", "", types.General),
	}

	ranked := s.responder.Rank("qqq", tools)

	s.Equal("Aaa", ranked[0].ToolName)
	s.Equal("Bbb", ranked[1].ToolName)
	s.Equal("Ccc", ranked[2].ToolName)
}

func (s *ResponderTestSuite) TestNoTruncationOfList() {
	var tools []models.ToolCandidate
	for i := 0; i < 25; i++ {
		tools = append(tools, approved(string(rune('a'+i)), "Tool"+string(rune('A'+i)), "", "desc", types.General))
	}
	s.catalog.tools[types.General] = tools

	resp := s.responder.Answer(context.Background(), "irgendwas", types.General)

	s.Len(resp.Ranked, 25)
	s.Equal(25, resp.ToolCount)
	s.Contains(*resp.Answer, "### 25.")
	s.Contains(*resp.Answer, "25 Tool(s)")
}

func (s *ResponderTestSuite) TestAskUsesCache() {
	answers := cache.New(newMemStore(), zerolog.Nop(), s.metrics)
	responder := NewResponder(s.catalog, relevance.NewScorer(relevance.DefaultWeights()), answers, zerolog.Nop(), s.metrics)
	ctx := context.Background()

	first := responder.Ask(ctx, "Tool für SEO?", types.Marketing)
	s.False(first.Cached)
	s.Equal(1, s.catalog.calls)

	second := responder.Ask(ctx, "  tool FÜR seo? ", types.Marketing)
	s.True(second.Cached)
	s.True(second.Curated)
	s.Equal(*first.Answer, *second.Answer)
	s.Equal(4, second.ToolCount)
	s.Equal(1, s.catalog.calls, "cache hit must not query the catalog")
}

func (s *ResponderTestSuite) TestAskFollowsModeration() {
	store, err := storage.NewSQLiteStorage(storage.Config{DatabasePath: filepath.Join(s.T().TempDir(), "ranking-test.db")})
	s.Require().NoError(err)
	defer store.Close()

	ctx := context.Background()
	answers := cache.New(store, zerolog.Nop(), nil)
	workflow := moderation.NewWorkflow(store, zerolog.Nop(), nil).InvalidateOnChange(answers)
	responder := NewResponder(workflow, relevance.NewScorer(relevance.DefaultWeights()), answers, zerolog.Nop(), nil)

	jasper, ok := workflow.Ingest(ctx, moderation.IngestRequest{
		Query: "Jasper", Department: types.Marketing, Description: "AI content creation", ToolName: "Jasper",
	})
	s.Require().True(ok)
	s.Require().True(workflow.Approve(ctx, jasper, "admin"))

	first := responder.Ask(ctx, "Content?", types.Marketing)
	s.Require().True(first.Curated)
	s.True(responder.Ask(ctx, "Content?", types.Marketing).Cached)

	s.Require().True(workflow.Revoke(ctx, jasper))
	afterRevoke := responder.Ask(ctx, "Content?", types.Marketing)
	s.True(afterRevoke.NoCuratedData)
	s.False(afterRevoke.Cached)
	s.Nil(afterRevoke.Answer)

	surfer, ok := workflow.Ingest(ctx, moderation.IngestRequest{
		Query: "Surfer SEO", Department: types.Marketing, Description: "SEO content", ToolName: "Surfer SEO",
	})
	s.Require().True(ok)
	s.Require().True(workflow.Approve(ctx, jasper, "admin"))
	s.Equal(1, responder.Ask(ctx, "Content?", types.Marketing).ToolCount)

	s.Require().True(workflow.Approve(ctx, surfer, "admin"))
	afterApprove := responder.Ask(ctx, "Content?", types.Marketing)
	s.False(afterApprove.Cached)
	s.Equal(2, afterApprove.ToolCount)
	s.Contains(*afterApprove.Answer, "Surfer SEO")
}

func (s *ResponderTestSuite) TestAskDoesNotCacheNoData() {
	store := newMemStore()
	answers := cache.New(store, zerolog.Nop(), nil)
	responder := NewResponder(s.catalog, relevance.NewScorer(relevance.DefaultWeights()), answers, zerolog.Nop(), nil)

	resp := responder.Ask(context.Background(), "Recruiting?", types.HR)

	s.True(resp.NoCuratedData)
	s.Empty(store.items)
}

func (s *ResponderTestSuite) TestAskWithoutCache() {
	resp := s.responder.Ask(context.Background(), "SEO", types.Marketing)

	s.True(resp.Curated)
	s.False(resp.Cached)
}

func (s *ResponderTestSuite) TestBadge() {
	s.Equal(" ⭐ TOP-Empfehlung", Badge(1, 0.51))
	s.Equal(" 🔥 Sehr relevant", Badge(1, 0.5))
	s.Equal(" 🔥 Sehr relevant", Badge(1, 0.45))
	s.Equal("", Badge(1, 0.4))
	s.Equal(" 🔥 Sehr relevant", Badge(2, 0.41))
	s.Equal(" 🔥 Sehr relevant", Badge(3, 0.9))
	s.Equal("", Badge(3, 0.4))
	s.Equal("", Badge(4, 0.9))
}

func (s *ResponderTestSuite) TestRenderTruncatesDescription() {
	ranked := []RankedTool{{Rank: 1, ToolName: "Long", Description: strings.Repeat("d", 250), Score: 0.3}}

	out := Render(types.Product, ranked, 1)

	s.Contains(out, "📝 "+strings.Repeat("d", 100)+"\n")
	s.NotContains(out, strings.Repeat("d", 101))
	s.NotContains(out, "Website")
	s.Contains(out, "Empfohlene KI-Tools für Product")
}

func (s *ResponderTestSuite) TestRenderSourceURL() {
	ranked := []RankedTool{{Rank: 1, ToolName: "Linear", SourceURL: "https://linear.app", Score: 0.9}}

	out := Render(types.Product, ranked, 1)

	s.Contains(out, "[https://linear.app](https://linear.app)")
}

func TestResponderTestSuite(t *testing.T) {
	suite.Run(t, new(ResponderTestSuite))
}
