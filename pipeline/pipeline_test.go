package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-daily/archive"
	"arxiv-daily/config"
	"arxiv-daily/dedup"
	"arxiv-daily/models"
	"arxiv-daily/pipeline"
	"arxiv-daily/site"
	"arxiv-daily/summarizer"
)

type fakeFetcher struct {
	papers []models.Paper
	err    error
}

func (f *fakeFetcher) Search(context.Context) ([]models.Paper, error) {
	return f.papers, f.err
}

type fakeSummarizer struct {
	failIDs map[string]bool
	calls   []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, paper models.Paper, _ string) (*summarizer.SummarizeResult, *summarizer.LLMRequestLog, error) {
	f.calls = append(f.calls, paper.PaperID)
	if f.failIDs[paper.PaperID] {
		return nil, &summarizer.LLMRequestLog{
			ModelName: "fake-model",
			Response:  "not json at all",
		}, errors.New("model exploded")
	}
	return &summarizer.SummarizeResult{
			Summary:  "summary of " + paper.PaperID,
			Decision: "recommended",
		}, &summarizer.LLMRequestLog{
			ModelName: "fake-model",
			Response:  "{}",
		}, nil
}

type fakeTrends struct {
	overview string
	err      error
	calls    int
}

func (f *fakeTrends) Trends(_ context.Context, entries []models.PaperSummary) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.overview, nil
}

type fakeAILogSink struct {
	logs []models.AILog
}

func (f *fakeAILogSink) Insert(_ context.Context, l models.AILog) error {
	f.logs = append(f.logs, l)
	return nil
}

type fakeNotifier struct {
	reports  []*archive.Day
	noPapers []string
}

func (f *fakeNotifier) SendDailyReport(day *archive.Day) error {
	f.reports = append(f.reports, day)
	return nil
}

func (f *fakeNotifier) SendNoPapersNotice(date string) error {
	f.noPapers = append(f.noPapers, date)
	return nil
}

func paperWithID(id string) models.Paper {
	return models.Paper{
		PaperID:  id,
		Title:    "paper " + id,
		Abstract: "abstract of " + id,
		EntryURL: "https://arxiv.org/abs/" + id,
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
}

func newTestPipeline(t *testing.T, fetch *fakeFetcher, sum *fakeSummarizer, notify *fakeNotifier) (*pipeline.Pipeline, string, string) {
	t.Helper()
	dataDir := t.TempDir()
	siteDir := t.TempDir()

	p := &pipeline.Pipeline{
		Fetcher:    fetch,
		Summarizer: sum,
		SeenStore:  dedup.NewFileStore(dataDir),
		Archive:    archive.NewFileStore(dataDir),
		Renderer:   site.New(config.SiteConfig{OutputDir: siteDir, Title: "Arxiv LLM Daily"}),
		Notifier:   notify,
		MaxResults: 20,
		Now:        fixedNow,
	}
	return p, dataDir, siteDir
}

func TestRunSkipsSeenPapers(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{papers: []models.Paper{paperWithID("2401.0001"), paperWithID("2401.0002")}}
	sum := &fakeSummarizer{}
	notify := &fakeNotifier{}
	p, dataDir, _ := newTestPipeline(t, fetch, sum, notify)

	require.NoError(t, p.SeenStore.Save(ctx, dedup.NewSeenSet("2401.0001")))

	report, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 1, report.New)
	assert.Equal(t, 1, report.Summarized)
	assert.Equal(t, []string{"2401.0002"}, sum.calls)

	seen, err := dedup.NewFileStore(dataDir).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2401.0001", "2401.0002"}, seen.IDs())

	day, err := p.Archive.Day(ctx, "2024-01-05")
	require.NoError(t, err)
	require.Len(t, day.Entries, 1)
	assert.Equal(t, "2401.0002", day.Entries[0].Paper.PaperID)

	require.Len(t, notify.reports, 1)
	assert.Empty(t, notify.noPapers)
}

func TestRunEmptyFetch(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{}
	sum := &fakeSummarizer{}
	notify := &fakeNotifier{}
	p, _, siteDir := newTestPipeline(t, fetch, sum, notify)

	require.NoError(t, p.SeenStore.Save(ctx, dedup.NewSeenSet("2401.0001")))

	report, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Summarized)
	assert.Empty(t, sum.calls)

	// Seen set unchanged.
	seen, err := p.SeenStore.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2401.0001"}, seen.IDs())

	// A zero-papers page is still rendered.
	html, err := os.ReadFile(filepath.Join(siteDir, "days", "2024-01-05.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "No new papers matched the filters")

	assert.Equal(t, []string{"2024-01-05"}, notify.noPapers)
	assert.Empty(t, notify.reports)
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{err: errors.New("arxiv is down")}
	p, dataDir, siteDir := newTestPipeline(t, fetch, &fakeSummarizer{}, &fakeNotifier{})

	_, err := p.Run(ctx)
	require.Error(t, err)

	// Nothing was written anywhere.
	_, err = os.Stat(filepath.Join(dataDir, "processed_papers.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(siteDir, "index.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunSummarizeFailureSkipsAndContinues(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{papers: []models.Paper{paperWithID("a"), paperWithID("b"), paperWithID("c")}}
	sum := &fakeSummarizer{failIDs: map[string]bool{"b": true}}
	notify := &fakeNotifier{}
	p, _, _ := newTestPipeline(t, fetch, sum, notify)

	report, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.New)
	assert.Equal(t, 2, report.Summarized)
	assert.Equal(t, []string{"b"}, report.Skipped)

	// The failed paper stays unseen so a later run retries it.
	seen, err := p.SeenStore.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, seen.IDs())
}

func TestRunAuditsFailedSummarizeCalls(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{papers: []models.Paper{paperWithID("a"), paperWithID("b")}}
	sum := &fakeSummarizer{failIDs: map[string]bool{"b": true}}
	sink := &fakeAILogSink{}
	p, _, _ := newTestPipeline(t, fetch, sum, &fakeNotifier{})
	p.AILogs = sink

	_, err := p.Run(ctx)
	require.NoError(t, err)

	require.Len(t, sink.logs, 2)
	byPaper := map[string]models.AILog{}
	for _, l := range sink.logs {
		byPaper[l.PaperID] = l
	}
	assert.True(t, byPaper["a"].Success)
	assert.False(t, byPaper["b"].Success)
	assert.Equal(t, "not json at all", byPaper["b"].ResponseExcerpt)
	assert.Equal(t, "fake-model", byPaper["b"].Model)
}

func TestRunHonorsMaxResults(t *testing.T) {
	ctx := context.Background()
	var papers []models.Paper
	for i := 0; i < 5; i++ {
		papers = append(papers, paperWithID(fmt.Sprintf("p%d", i)))
	}
	fetch := &fakeFetcher{papers: papers}
	sum := &fakeSummarizer{}
	p, _, _ := newTestPipeline(t, fetch, sum, &fakeNotifier{})
	p.MaxResults = 2

	report, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.New)
	assert.Equal(t, []string{"p0", "p1"}, sum.calls)
}

func TestRunQuotaExhaustionSkipsRemainder(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{papers: []models.Paper{paperWithID("a"), paperWithID("b"), paperWithID("c")}}
	sum := &fakeSummarizer{}
	p, _, _ := newTestPipeline(t, fetch, sum, &fakeNotifier{})
	p.Quota = summarizer.NewQuotaLimiter(config.QuotaConfig{RequestsPerDay: 1})

	report, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summarized)
	assert.ElementsMatch(t, []string{"b", "c"}, report.Skipped)

	seen, err := p.SeenStore.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, seen.IDs())
}

func TestRunWritesTrendOverview(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{papers: []models.Paper{paperWithID("a"), paperWithID("b")}}
	trends := &fakeTrends{overview: "Routing papers dominate today's batch."}
	p, _, siteDir := newTestPipeline(t, fetch, &fakeSummarizer{}, &fakeNotifier{})
	p.Trends = trends

	_, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, trends.calls)

	day, err := p.Archive.Day(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "Routing papers dominate today's batch.", day.TrendOverview)

	html, err := os.ReadFile(filepath.Join(siteDir, "days", "2024-01-05.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Routing papers dominate")
}

func TestRunTrendFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{papers: []models.Paper{paperWithID("a")}}
	p, _, _ := newTestPipeline(t, fetch, &fakeSummarizer{}, &fakeNotifier{})
	p.Trends = &fakeTrends{err: errors.New("model exploded")}

	report, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summarized)

	day, err := p.Archive.Day(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.Empty(t, day.TrendOverview)
}

func TestRunSkipsTrendOnEmptyDay(t *testing.T) {
	ctx := context.Background()
	trends := &fakeTrends{overview: "should not appear"}
	p, _, _ := newTestPipeline(t, &fakeFetcher{}, &fakeSummarizer{}, &fakeNotifier{})
	p.Trends = trends

	_, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, trends.calls)
}

func TestRunTwiceSameDayDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	fetch := &fakeFetcher{papers: []models.Paper{paperWithID("a")}}
	sum := &fakeSummarizer{}
	p, _, _ := newTestPipeline(t, fetch, sum, &fakeNotifier{})

	_, err := p.Run(ctx)
	require.NoError(t, err)
	_, err = p.Run(ctx)
	require.NoError(t, err)

	day, err := p.Archive.Day(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.Len(t, day.Entries, 1)

	// Second run saw the paper as already processed.
	assert.Equal(t, []string{"a"}, sum.calls)
}
