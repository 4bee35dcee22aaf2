package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging    LoggingConfig  `yaml:"logging"`
	Search     SearchConfig   `yaml:"search"`
	LLM        LLMConfig      `yaml:"llm"`
	Quota      QuotaConfig    `yaml:"quota"`
	FullText   FullTextConfig `yaml:"full_text"`
	Storage    StorageConfig  `yaml:"storage"`
	Site       SiteConfig     `yaml:"site"`
	Mail       MailConfig     `yaml:"mail"`
	ServerAddr string         `yaml:"server_addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SearchConfig drives the arXiv API query.
type SearchConfig struct {
	// Categories are arXiv category codes (e.g. cs.AI). Joined with OR.
	Categories []string `yaml:"categories"`

	// Query is the keyword expression, e.g.
	// ("Large Language Model" OR "LLM" OR "RAG").
	Query string `yaml:"query"`

	// MaxResults caps the number of NEW papers processed per run.
	// The search window itself is wider so a run can skip already seen
	// papers and still fill the cap.
	MaxResults int `yaml:"max_results"`

	// DaysBack limits the submittedDate window to the last N days.
	// 0 disables the date filter.
	DaysBack int `yaml:"days_back"`

	// SortBy is submittedDate or lastUpdatedDate.
	SortBy string `yaml:"sort_by"`

	// SortOrder is ascending or descending. Ascending processes the
	// oldest unseen papers first.
	SortOrder string `yaml:"sort_order"`

	// IncludeCrossListed matches cat: instead of primary_cat:.
	IncludeCrossListed bool `yaml:"include_cross_listed"`

	// Scope restricts the keyword query to a single field:
	// "all" (default), "title", "abstract" or "author".
	Scope string `yaml:"scope"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	// Language of the generated summaries, e.g. "English", "Korean".
	Language string `yaml:"language"`
}

// QuotaConfig defines rate / daily limits for summarization LLM calls.
// Values of 0 or below mean no limit.
type QuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

type FullTextConfig struct {
	// Enabled toggles fetching the arXiv HTML rendition. When false the
	// summarizer only sees the abstract.
	Enabled bool `yaml:"enabled"`

	// MaxChars caps extracted text per paper.
	MaxChars int `yaml:"max_chars"`
}

type StorageConfig struct {
	// Backend is "file" or "mongo".
	Backend string `yaml:"backend"`

	// DataDir holds the seen set and the archive for the file backend.
	DataDir string `yaml:"data_dir"`

	MongoDBName string `yaml:"mongo_db_name"`
}

type SiteConfig struct {
	// OutputDir is the static site root handed to the external publisher.
	OutputDir string `yaml:"output_dir"`
	Title     string `yaml:"title"`
}

// MailConfig only carries the on/off switch. Addresses and SMTP
// credentials come from env: SMTP_SERVER, SMTP_PORT, SENDER_EMAIL,
// SENDER_PASSWORD, RECEIVER_EMAIL.
type MailConfig struct {
	Enabled bool `yaml:"enabled"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyDefaults(&c)
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyDefaults(c *AppConfig) {
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 20
	}
	if c.Search.SortBy == "" {
		c.Search.SortBy = "submittedDate"
	}
	if c.Search.SortOrder == "" {
		c.Search.SortOrder = "ascending"
	}
	if c.Search.Scope == "" {
		c.Search.Scope = "all"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "google"
	}
	if c.LLM.Language == "" {
		c.LLM.Language = "English"
	}
	if c.FullText.MaxChars <= 0 {
		c.FullText.MaxChars = 20000
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.MongoDBName == "" {
		c.Storage.MongoDBName = "arxivdaily"
	}
	if c.Site.OutputDir == "" {
		c.Site.OutputDir = "site"
	}
	if c.Site.Title == "" {
		c.Site.Title = "Arxiv LLM Daily"
	}
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
