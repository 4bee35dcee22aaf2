package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"arxiv-daily/config"
	"arxiv-daily/models"
)

// SummarizeResult is the structured JSON object the model must return.
type SummarizeResult struct {
	Keywords            []string `json:"keywords"`
	CorePainPoint       string   `json:"core_pain_point"`
	TechnicalInnovation string   `json:"technical_innovation"`
	ApplicationValue    string   `json:"application_value"`
	Summary             string   `json:"summary"`
	Decision            string   `json:"decision"`
	DecisionReason      string   `json:"decision_reason"`
	Error               *string  `json:"error,omitempty"`
}

// LLMRequestLog captures one model call for the run log.
type LLMRequestLog struct {
	Response    string     `json:"response"`
	LatencyMs   int64      `json:"latency_ms"`
	TokenUsage  TokenUsage `json:"token_usage"`
	ModelName   string     `json:"model_name"`
	GeneratedAt time.Time  `json:"generated_at"`
}

type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Summarizer produces a structured review of one paper. The request log
// is returned whenever a call was attempted, error or not, so callers
// can audit failures. The production implementation is Gemini; tests use
// a fake.
type Summarizer interface {
	Summarize(ctx context.Context, paper models.Paper, content string) (*SummarizeResult, *LLMRequestLog, error)
}

const systemInstructionTemplate = `
You are a senior technical reviewer screening arXiv papers on large language
models, multimodal systems, agents, data synthesis and mixture-of-experts for
engineering and application value. Analyze the provided paper and respond
with a structured review.
The response MUST be a valid JSON object with seven keys:

1. keywords: A list of 2-5 short topic tags (e.g. "RAG", "MoE routing").
2. core_pain_point: One sentence naming the gap in existing techniques.
3. technical_innovation: A numbered list in one string ("1) ... 2) ...")
   describing the concrete methods, algorithms, data scale and key results.
   No more than 200 words. Avoid academic boilerplate.
4. application_value: What adopting this technique buys in practice,
   no more than 60 words.
5. summary: A plain-language summary of the paper, no more than 200 words.
6. decision: Exactly one of "recommended", "borderline", "not_recommended".
   Mark "not_recommended" for purely theoretical work, toy-task-only
   evaluations, or methods with no clear system to build on.
7. decision_reason: No more than 100 words on why, covering topic fit and
   engineering value.

Additional constraints:
- Write keywords, core_pain_point, technical_innovation, application_value,
  summary and decision_reason in %s. The decision field stays exactly as
  listed above.
- You MUST NOT wrap the JSON output in a markdown code block (e.g. ` + "```json ... ```" + `).
- The response should contain ONLY the raw JSON string.
- If the paper cannot be reviewed, add an "error" key with a descriptive
  message and provide empty values for the other fields.
`

// Gemini summarizes papers with the Gemini API.
type Gemini struct {
	cfg config.LLMConfig
}

func NewGemini(cfg config.LLMConfig) (*Gemini, error) {
	if cfg.Provider != "google" {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	return &Gemini{cfg: cfg}, nil
}

// Summarize calls the model once per paper. The request log is returned
// on the error paths too so failed calls still land in the audit trail.
func (g *Gemini) Summarize(ctx context.Context, paper models.Paper, content string) (*SummarizeResult, *LLMRequestLog, error) {
	startTime := time.Now()
	llmLog := &LLMRequestLog{ModelName: g.cfg.Model}
	defer func() {
		llmLog.LatencyMs = time.Since(startTime).Milliseconds()
		llmLog.GeneratedAt = time.Now()
	}()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		return nil, llmLog, err
	}

	instruction := fmt.Sprintf(systemInstructionTemplate, g.cfg.Language)
	prompt := BuildPrompt(paper, content)

	result, err := client.Models.GenerateContent(
		ctx,
		g.cfg.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		},
	)
	if err != nil {
		return nil, llmLog, err
	}

	llmLog.Response = result.Text()
	if result.UsageMetadata != nil {
		llmLog.TokenUsage = TokenUsage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}

	summary, err := DecodeResult(result.Text())
	if err != nil {
		return nil, llmLog, err
	}

	if summary.Error != nil {
		return summary, llmLog, fmt.Errorf("model judged the paper unreviewable: %s", *summary.Error)
	}

	return summary, llmLog, nil
}

// BuildPrompt lays out one paper for the model. content is the enriched
// full text when available, otherwise the abstract.
func BuildPrompt(paper models.Paper, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", paper.Title)
	fmt.Fprintf(&b, "Authors: %s\n", paper.AuthorsCSV())
	fmt.Fprintf(&b, "Primary category: %s\n", paper.PrimaryCategory)
	if !paper.Published.IsZero() {
		fmt.Fprintf(&b, "Published: %s\n", paper.Published.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Link: %s\n", paper.EntryURL)
	if content == "" {
		content = paper.Abstract
	}
	fmt.Fprintf(&b, "\n%s\n", content)
	return b.String()
}

var codeFence = regexp.MustCompile("(?s)^```(?:json)?\\s*\n?(.*?)\n?```\\s*$")

// DecodeResult parses the model response, tolerating a markdown code
// fence the instruction forbids but models still emit.
func DecodeResult(raw string) (*SummarizeResult, error) {
	raw = strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	var result SummarizeResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decode summarize result: %w", err)
	}

	switch result.Decision {
	case string(models.DecisionRecommended), string(models.DecisionBorderline), string(models.DecisionNotRecommended), "":
	default:
		return nil, fmt.Errorf("unexpected decision value: %q", result.Decision)
	}
	return &result, nil
}

// ToAIGeneratedInfo converts a decoded result into the archived form.
func (r *SummarizeResult) ToAIGeneratedInfo(modelName string, generatedAt time.Time) models.AIGeneratedInfo {
	decision := models.Decision(r.Decision)
	if decision == "" {
		decision = models.DecisionBorderline
	}
	return models.AIGeneratedInfo{
		Keywords:            r.Keywords,
		CorePainPoint:       r.CorePainPoint,
		TechnicalInnovation: r.TechnicalInnovation,
		ApplicationValue:    r.ApplicationValue,
		Summary:             r.Summary,
		Decision:            decision,
		DecisionReason:      r.DecisionReason,
		ModelName:           modelName,
		GeneratedAt:         generatedAt,
	}
}
