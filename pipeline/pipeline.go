package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arxiv-daily/archive"
	"arxiv-daily/config"
	"arxiv-daily/dedup"
	"arxiv-daily/fetcher"
	"arxiv-daily/fulltext"
	"arxiv-daily/models"
	"arxiv-daily/summarizer"
)

// summarizeTimeout bounds one LLM call so a stuck request cannot hang
// the whole run.
const summarizeTimeout = 2 * time.Minute

// SiteRenderer regenerates the static site from the archive.
type SiteRenderer interface {
	RenderSite(ctx context.Context, store archive.Store, date string) error
}

// TrendAnalyzer synthesizes a cross-paper overview of the day's
// summaries for the top of the day page and the mail report.
type TrendAnalyzer interface {
	Trends(ctx context.Context, entries []models.PaperSummary) (string, error)
}

// Notifier delivers the daily report. Failures are logged, never fatal.
type Notifier interface {
	SendDailyReport(day *archive.Day) error
	SendNoPapersNotice(date string) error
}

// AILogSink records summarization calls; nil disables recording.
type AILogSink interface {
	Insert(ctx context.Context, l models.AILog) error
}

// SummarySink mirrors archived summaries into secondary storage;
// nil disables mirroring.
type SummarySink interface {
	Upsert(ctx context.Context, s *models.PaperSummary) error
}

// Pipeline is the daily batch run: load seen set, fetch, dedupe,
// summarize, archive, render, save seen set, notify. Single-threaded,
// run-to-completion; one invocation per external schedule trigger.
type Pipeline struct {
	Fetcher    fetcher.Fetcher
	Enricher   fulltext.Enricher // nil disables full-text enrichment
	Summarizer summarizer.Summarizer
	Quota      *summarizer.QuotaLimiter // nil disables quota limits
	Trends     TrendAnalyzer            // nil disables the trend overview
	SeenStore  dedup.Store
	Archive    archive.Store
	Renderer   SiteRenderer
	Notifier   Notifier    // nil disables mail
	AILogs     AILogSink   // nil disables call logging
	Summaries  SummarySink // nil disables mirroring

	MaxResults int

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

// RunReport summarizes one run for logging.
type RunReport struct {
	RunID      string
	Date       string
	Fetched    int
	New        int
	Summarized int
	// Skipped lists paper ids whose summarization failed or was cut off
	// by the quota. They stay out of the seen set so a later run can
	// retry them.
	Skipped []string
}

// Run executes one batch run. The returned error is fatal (fetch,
// archive or render failure); per-paper summarization errors only land
// in the report.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	report := &RunReport{
		RunID: uuid.NewString(),
		Date:  now().UTC().Format(archive.DateFormat),
	}
	log := config.Logger

	seen, err := p.SeenStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}

	papers, err := p.Fetcher.Search(ctx)
	if err != nil {
		// Fatal: nothing processed, seen set untouched.
		return nil, fmt.Errorf("fetch papers: %w", err)
	}
	report.Fetched = len(papers)

	fresh := dedup.Filter(papers, seen)
	if p.MaxResults > 0 && len(fresh) > p.MaxResults {
		fresh = fresh[:p.MaxResults]
	}
	report.New = len(fresh)
	log.Infof("run %s: fetched %d papers, %d new", report.RunID, report.Fetched, report.New)

	var entries []models.PaperSummary
	for _, paper := range fresh {
		if p.Quota != nil {
			ok, err := p.Quota.WaitAndReserve(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				log.Warnf("summary quota exhausted, skipping remaining %d papers", report.New-len(entries)-len(report.Skipped))
				for _, rest := range fresh[len(entries)+len(report.Skipped):] {
					report.Skipped = append(report.Skipped, rest.PaperID)
				}
				break
			}
		}

		entry, ok := p.processPaper(ctx, paper, report)
		if !ok {
			report.Skipped = append(report.Skipped, paper.PaperID)
			continue
		}
		entries = append(entries, entry)
		seen.Add(paper.PaperID)
	}
	report.Summarized = len(entries)

	if err := p.Archive.AppendDay(ctx, report.Date, entries); err != nil {
		return nil, fmt.Errorf("append archive: %w", err)
	}

	if p.Summaries != nil {
		for i := range entries {
			if err := p.Summaries.Upsert(ctx, &entries[i]); err != nil {
				log.Warnf("mirror summary %s: %v", entries[i].Paper.PaperID, err)
			}
		}
	}

	p.updateTrend(ctx, report.Date)

	if err := p.Renderer.RenderSite(ctx, p.Archive, report.Date); err != nil {
		// Fatal: atomic writes keep the previously published tree intact.
		return nil, fmt.Errorf("render site: %w", err)
	}

	if err := p.SeenStore.Save(ctx, seen); err != nil {
		return nil, fmt.Errorf("save seen set: %w", err)
	}

	p.notify(ctx, report)
	return report, nil
}

func (p *Pipeline) processPaper(ctx context.Context, paper models.Paper, report *RunReport) (models.PaperSummary, bool) {
	log := config.Logger

	content := ""
	if p.Enricher != nil {
		text, err := p.Enricher.Enrich(ctx, paper)
		if err != nil {
			// Degrade to abstract-only.
			log.Warnf("full text for %s unavailable: %v", paper.PaperID, err)
		} else {
			content = text
		}
	}
	paper.FullText = content

	callCtx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	startedAt := time.Now()
	result, llmLog, err := p.Summarizer.Summarize(callCtx, paper, content)
	p.recordAILog(ctx, report.RunID, paper.PaperID, llmLog, startedAt, err == nil)
	if err != nil {
		// Skip and continue; the paper stays unseen for a retry on a
		// later run.
		log.Errorf("summarize %s failed: %v", paper.PaperID, err)
		return models.PaperSummary{}, false
	}

	modelName := ""
	if llmLog != nil {
		modelName = llmLog.ModelName
	}
	return models.PaperSummary{
		Paper:         paper,
		AI:            result.ToAIGeneratedInfo(modelName, startedAt.UTC()),
		ProcessedDate: report.Date,
	}, true
}

// updateTrend regenerates the day's trend overview from the full day, so
// a second run on the same date reworks it over all of the day's papers.
// Failures degrade to a page without the trend section.
func (p *Pipeline) updateTrend(ctx context.Context, date string) {
	if p.Trends == nil {
		return
	}
	log := config.Logger

	day, err := p.Archive.Day(ctx, date)
	if err != nil {
		log.Warnf("load day for trend overview: %v", err)
		return
	}
	if len(day.Entries) == 0 {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	overview, err := p.Trends.Trends(callCtx, day.Entries)
	if err != nil {
		log.Warnf("trend overview failed: %v", err)
		return
	}
	if overview == "" {
		return
	}
	if err := p.Archive.SetTrend(ctx, date, overview); err != nil {
		log.Warnf("save trend overview: %v", err)
	}
}

func (p *Pipeline) recordAILog(ctx context.Context, runID, paperID string, llmLog *summarizer.LLMRequestLog, startedAt time.Time, success bool) {
	if p.AILogs == nil || llmLog == nil {
		return
	}
	l := models.AILog{
		RunID:            runID,
		PaperID:          paperID,
		Model:            llmLog.ModelName,
		PromptTokens:     llmLog.TokenUsage.InputTokens,
		CompletionTokens: llmLog.TokenUsage.OutputTokens,
		TotalTokens:      llmLog.TokenUsage.TotalTokens,
		DurationMs:       llmLog.LatencyMs,
		Success:          success,
		ResponseExcerpt:  truncate(llmLog.Response, 200),
		RequestedAt:      startedAt,
		CompletedAt:      time.Now(),
	}
	if err := p.AILogs.Insert(ctx, l); err != nil {
		config.Logger.Warnf("record ai log for %s: %v", paperID, err)
	}
}

func (p *Pipeline) notify(ctx context.Context, report *RunReport) {
	if p.Notifier == nil {
		return
	}
	log := config.Logger

	if report.Summarized == 0 {
		if err := p.Notifier.SendNoPapersNotice(report.Date); err != nil {
			log.Warnf("send no-papers notice: %v", err)
		}
		return
	}

	day, err := p.Archive.Day(ctx, report.Date)
	if err != nil {
		log.Warnf("load day for mail: %v", err)
		return
	}
	if err := p.Notifier.SendDailyReport(day); err != nil {
		log.Warnf("send daily report: %v", err)
	}
}

// truncate returns s truncated to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
