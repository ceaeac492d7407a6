package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"travelblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	results []Result
	calls   []string
}

func (r *recorder) deliver(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) search(_ context.Context, q string) ([]*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, q)
	return []*models.Article{{Title: "结果 " + q}}, nil
}

func (r *recorder) snapshot() ([]Result, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...), append([]string(nil), r.calls...)
}

func (r *recorder) delivered() int {
	res, _ := r.snapshot()
	return len(res)
}

func TestUpdateDebouncesToLastQuery(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(rec.search, rec.deliver, 40*time.Millisecond)
	defer s.Close()

	s.Update("w")
	s.Update("wu")
	s.Update("wuzhen")

	require.Eventually(t, func() bool { return rec.delivered() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	results, calls := rec.snapshot()
	assert.Equal(t, []string{"wuzhen"}, calls)
	require.Len(t, results, 1)
	assert.Equal(t, "wuzhen", results[0].Query)
	assert.Equal(t, "结果 wuzhen", results[0].Articles[0].Title)
}

func TestSubmitBypassesDebounce(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(rec.search, rec.deliver, time.Hour)
	defer s.Close()

	s.Update("xi")
	s.Submit("xihu")

	require.Eventually(t, func() bool { return rec.delivered() == 1 }, time.Second, 5*time.Millisecond)
	_, calls := rec.snapshot()
	assert.Equal(t, []string{"xihu"}, calls)
}

func TestSubmitCancelsPendingTimer(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(rec.search, rec.deliver, 30*time.Millisecond)
	defer s.Close()

	s.Update("zhou")
	s.Submit("suzhou")
	time.Sleep(120 * time.Millisecond)

	_, calls := rec.snapshot()
	assert.Equal(t, []string{"suzhou"}, calls)
}

func TestBlankQueryClearsWithoutRequest(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(rec.search, rec.deliver, 10*time.Millisecond)
	defer s.Close()

	s.Update("   ")
	s.Submit("")
	time.Sleep(50 * time.Millisecond)

	results, calls := rec.snapshot()
	assert.Empty(t, calls)
	require.Len(t, results, 2)
	assert.True(t, results[0].Cleared)
	assert.True(t, results[1].Cleared)
}

func TestDismissDropsPendingSearch(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(rec.search, rec.deliver, 30*time.Millisecond)
	defer s.Close()

	s.Update("tongli")
	s.Dismiss()
	time.Sleep(100 * time.Millisecond)

	results, calls := rec.snapshot()
	assert.Empty(t, calls)
	require.Len(t, results, 1)
	assert.True(t, results[0].Cleared)
}

func TestLatestIssuedQueryWins(t *testing.T) {
	var (
		mu        sync.Mutex
		cancelled bool
	)
	wasCancelled := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return cancelled
	}
	rec := &recorder{}
	search := func(ctx context.Context, q string) ([]*models.Article, error) {
		if q == "slow" {
			<-ctx.Done()
			mu.Lock()
			cancelled = true
			mu.Unlock()
			return []*models.Article{{Title: "stale"}}, nil
		}
		return rec.search(ctx, q)
	}
	s := NewSearcher(search, rec.deliver, time.Hour)

	s.Submit("slow")
	s.Submit("fast")
	require.Eventually(t, func() bool { return rec.delivered() == 1 && wasCancelled() }, time.Second, 5*time.Millisecond)
	s.Close()

	results, _ := rec.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, "fast", results[0].Query)
}

func TestStaleResultIgnoredEvenIfSearchIgnoresContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	rec := &recorder{}
	search := func(ctx context.Context, q string) ([]*models.Article, error) {
		if q == "old" {
			close(started)
			<-release
			return []*models.Article{{Title: "stale"}}, nil
		}
		return rec.search(ctx, q)
	}
	s := NewSearcher(search, rec.deliver, time.Hour)

	s.Submit("old")
	<-started
	s.Submit("new")
	require.Eventually(t, func() bool { return rec.delivered() == 1 }, time.Second, 5*time.Millisecond)
	close(release)
	s.Close()

	results, _ := rec.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Query)
}

func TestCloseStopsEverything(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(rec.search, rec.deliver, 20*time.Millisecond)

	s.Update("nanxun")
	s.Close()
	s.Update("again")
	s.Submit("again")
	s.Dismiss()
	time.Sleep(80 * time.Millisecond)

	results, calls := rec.snapshot()
	assert.Empty(t, calls)
	assert.Empty(t, results)
}
