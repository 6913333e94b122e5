package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/insights/internal/analysis"
	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/metrics"
	"github.com/joescharf/insights/internal/session"
)

type fakeExtractor struct {
	mu     sync.Mutex
	calls  []string
	fail   map[string]error
	active int64
	peak   int64
}

func (f *fakeExtractor) ExtractFacet(ctx context.Context, req analysis.FacetRequest, budget analysis.FacetBudget) (*facet.Facet, error) {
	n := atomic.AddInt64(&f.active, 1)
	for {
		p := atomic.LoadInt64(&f.peak)
		if n <= p || atomic.CompareAndSwapInt64(&f.peak, p, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt64(&f.active, -1)

	f.mu.Lock()
	f.calls = append(f.calls, req.SessionID)
	f.mu.Unlock()
	if err := f.fail[req.SessionID]; err != nil {
		return nil, err
	}
	return &facet.Facet{
		SessionID:      req.SessionID,
		UnderlyingGoal: "goal for " + req.SessionID,
		Outcome:        "fully_achieved",
	}, nil
}

func makeItem(sid string) Item {
	id := session.Identity{ProjectHash: "-srv-app", SessionID: sid}
	return Item{
		Record: &session.Record{
			Identity: id,
			Entries: []session.Entry{{
				Type:      "user",
				Timestamp: "2026-08-01T09:00:00Z",
				Message:   &session.Message{Role: "user", Content: session.Content{Text: "hello"}},
			}},
		},
		Metrics:     &metrics.Metrics{Identity: id, DurationMin: 5, StartTime: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
		ProjectName: "app",
	}
}

func newCache(t *testing.T) *facet.Cache {
	t.Helper()
	c, err := facet.NewCache(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestFacetsSkipsCached(t *testing.T) {
	cache := newCache(t)
	a, b := makeItem("aaa"), makeItem("bbb")
	require.NoError(t, cache.Put(a.Record.Identity, &facet.Facet{SessionID: "aaa", Outcome: "fully_achieved"}))

	ext := &fakeExtractor{}
	out, err := Facets(context.Background(), ext, cache, []Item{a, b}, FacetOptions{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, out.CachedHits)
	assert.Equal(t, 1, out.Extracted)
	assert.Empty(t, out.Failures)
	assert.Len(t, out.Facets, 2)
	assert.Equal(t, []string{"bbb"}, ext.calls, "cached session never reaches the extractor")
}

func TestFacetsPersistsBeforeSurfacing(t *testing.T) {
	cache := newCache(t)
	it := makeItem("ccc")

	out, err := Facets(context.Background(), &fakeExtractor{}, cache, []Item{it}, FacetOptions{Concurrency: 1})
	require.NoError(t, err)

	require.Contains(t, out.Facets, it.Record.Identity)
	cached, err := cache.Get(it.Record.Identity)
	require.NoError(t, err, "surfaced facet must already be durable")
	assert.Equal(t, "ccc", cached.SessionID)
}

func TestFacetsFailuresStayUncached(t *testing.T) {
	cache := newCache(t)
	good, bad := makeItem("good"), makeItem("bad")
	boom := &analysis.Error{Kind: analysis.KindExhausted, Err: errors.New("overloaded")}

	ext := &fakeExtractor{fail: map[string]error{"bad": boom}}
	out, err := Facets(context.Background(), ext, cache, []Item{good, bad}, FacetOptions{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Extracted)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, bad.Record.Identity, out.Failures[0].Identity)
	assert.ErrorIs(t, out.Failures[0].Err, boom)
	assert.False(t, cache.Has(bad.Record.Identity), "failed extraction must stay retryable")
	assert.NotContains(t, out.Facets, bad.Record.Identity)
}

func TestFacetsDryRunMakesNoCalls(t *testing.T) {
	cache := newCache(t)
	a, b := makeItem("aaa"), makeItem("bbb")
	require.NoError(t, cache.Put(a.Record.Identity, &facet.Facet{SessionID: "aaa"}))

	ext := &fakeExtractor{}
	out, err := Facets(context.Background(), ext, cache, []Item{a, b}, FacetOptions{Concurrency: 4, DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, ext.calls)
	assert.Equal(t, 1, out.CachedHits)
	assert.Equal(t, 1, out.Pending)
	assert.Equal(t, 0, out.Extracted)
}

func TestFacetsBoundsConcurrency(t *testing.T) {
	cache := newCache(t)
	items := make([]Item, 12)
	for i := range items {
		items[i] = makeItem(string(rune('a'+i)) + "-session")
	}

	ext := &fakeExtractor{}
	_, err := Facets(context.Background(), ext, cache, items, FacetOptions{Concurrency: 3})
	require.NoError(t, err)
	assert.LessOrEqual(t, ext.peak, int64(3))
}

func TestFacetsEveryItemAccountedFor(t *testing.T) {
	cache := newCache(t)
	items := []Item{makeItem("one"), makeItem("two"), makeItem("three")}
	require.NoError(t, cache.Put(items[0].Record.Identity, &facet.Facet{SessionID: "one"}))

	ext := &fakeExtractor{fail: map[string]error{"three": errors.New("nope")}}
	out, err := Facets(context.Background(), ext, cache, items, FacetOptions{Concurrency: 2})
	require.NoError(t, err)

	total := len(out.Facets) + len(out.Failures) + out.Pending
	assert.Equal(t, len(items), total)
}
