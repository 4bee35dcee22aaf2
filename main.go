package main

import (
	"context"
	"os"

	"go.mongodb.org/mongo-driver/mongo"

	"arxiv-daily/archive"
	"arxiv-daily/config"
	"arxiv-daily/db"
	"arxiv-daily/dedup"
	"arxiv-daily/fetcher"
	"arxiv-daily/fulltext"
	"arxiv-daily/mailer"
	"arxiv-daily/models"
	"arxiv-daily/pipeline"
	"arxiv-daily/repositories"
	"arxiv-daily/site"
	"arxiv-daily/summarizer"
)

// aiLogSink adapts the mongo repository to the pipeline sink.
type aiLogSink struct {
	repo *repositories.AILogRepository
}

func (s aiLogSink) Insert(ctx context.Context, l models.AILog) error {
	_, err := s.repo.Insert(ctx, l)
	return err
}

type summarySink struct {
	repo *repositories.SummaryRepository
}

func (s summarySink) Upsert(ctx context.Context, sum *models.PaperSummary) error {
	_, err := s.repo.UpsertByDateAndPaper(ctx, sum)
	return err
}

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx := context.Background()

	gemini, err := summarizer.NewGemini(cfg.LLM)
	if err != nil {
		config.Logger.Errorf("init summarizer: %v", err)
		os.Exit(1)
	}

	p := &pipeline.Pipeline{
		Fetcher:    fetcher.New(cfg.Search),
		Summarizer: gemini,
		Trends:     gemini,
		Quota:      summarizer.NewQuotaLimiter(cfg.Quota),
		Archive:    archive.NewFileStore(cfg.Storage.DataDir),
		Renderer:   site.New(cfg.Site),
		Notifier:   mailer.NewFromEnv(cfg.Mail),
		MaxResults: cfg.Search.MaxResults,
	}
	if cfg.FullText.Enabled {
		p.Enricher = fulltext.New(cfg.FullText)
	}

	switch cfg.Storage.Backend {
	case "mongo":
		if err := db.Init(ctx); err != nil {
			config.Logger.Errorf("failed to initialize MongoDB: %v", err)
			os.Exit(1)
		}
		wireMongo(p, db.Database())
	default:
		p.SeenStore = dedup.NewFileStore(cfg.Storage.DataDir)
	}

	report, err := p.Run(ctx)
	if err != nil {
		config.Logger.Errorf("run failed: %v", err)
		os.Exit(1)
	}

	config.Logger.Infof("run %s done: %d fetched, %d new, %d summarized, %d skipped",
		report.RunID, report.Fetched, report.New, report.Summarized, len(report.Skipped))
}

// wireMongo keeps the file archive as the site source but moves the seen
// set to MongoDB and mirrors summaries and call logs there.
func wireMongo(p *pipeline.Pipeline, database *mongo.Database) {
	p.SeenStore = repositories.NewSeenPaperRepository(database)
	p.AILogs = aiLogSink{repo: repositories.NewAILogRepository(database)}
	p.Summaries = summarySink{repo: repositories.NewSummaryRepository(database)}
}
