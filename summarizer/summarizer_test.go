package summarizer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-daily/config"
	"arxiv-daily/models"
	"arxiv-daily/summarizer"
)

const rawResult = `{
  "keywords": ["MoE", "long context"],
  "core_pain_point": "Dense attention cost grows quadratically with context length.",
  "technical_innovation": "1) Context-conditioned expert router; 2) length curriculum training.",
  "application_value": "Constant inference cost on long inputs.",
  "summary": "The paper routes tokens to experts based on compressed context.",
  "decision": "recommended",
  "decision_reason": "Hits the MoE direction with a concrete system design."
}`

func TestDecodeResult(t *testing.T) {
	result, err := summarizer.DecodeResult(rawResult)
	require.NoError(t, err)

	assert.Equal(t, []string{"MoE", "long context"}, result.Keywords)
	assert.Equal(t, "recommended", result.Decision)
	assert.Nil(t, result.Error)
}

func TestDecodeResultStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + rawResult + "\n```"
	result, err := summarizer.DecodeResult(fenced)
	require.NoError(t, err)
	assert.Equal(t, "recommended", result.Decision)
}

func TestDecodeResultRejectsUnknownDecision(t *testing.T) {
	_, err := summarizer.DecodeResult(`{"decision": "maybe"}`)
	assert.Error(t, err)
}

func TestDecodeResultInvalidJSON(t *testing.T) {
	_, err := summarizer.DecodeResult("the model rambled instead of emitting JSON")
	assert.Error(t, err)
}

func TestBuildPromptPrefersContent(t *testing.T) {
	paper := models.Paper{
		PaperID:         "2401.00001",
		Title:           "Sparse Mixture-of-Experts",
		Authors:         []string{"Alice Zhang"},
		PrimaryCategory: "cs.LG",
		Abstract:        "Short abstract.",
		EntryURL:        "https://arxiv.org/abs/2401.00001",
		Published:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	withContent := summarizer.BuildPrompt(paper, "=== Abstract ===\nfull text here")
	assert.Contains(t, withContent, "Title: Sparse Mixture-of-Experts")
	assert.Contains(t, withContent, "full text here")
	assert.NotContains(t, withContent, "Short abstract.")

	abstractOnly := summarizer.BuildPrompt(paper, "")
	assert.Contains(t, abstractOnly, "Short abstract.")
}

func TestToAIGeneratedInfoDefaultsDecision(t *testing.T) {
	result := &summarizer.SummarizeResult{Summary: "s"}
	at := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)

	info := result.ToAIGeneratedInfo("gemini-2.0-flash", at)

	assert.Equal(t, models.DecisionBorderline, info.Decision)
	assert.Equal(t, "gemini-2.0-flash", info.ModelName)
	assert.Equal(t, at, info.GeneratedAt)
}

func TestBuildTrendPrompt(t *testing.T) {
	entries := []models.PaperSummary{
		{
			Paper: models.Paper{Title: "Sparse Mixture-of-Experts"},
			AI:    models.AIGeneratedInfo{Keywords: []string{"MoE", "RAG"}, Summary: "Routes tokens to experts."},
		},
		{
			Paper: models.Paper{Title: "Retrieval Augmented Agents"},
			AI:    models.AIGeneratedInfo{Keywords: []string{"RAG"}, Summary: "Agents with retrieval."},
		},
	}

	prompt := summarizer.BuildTrendPrompt(entries)

	assert.Contains(t, prompt, "Sparse Mixture-of-Experts")
	assert.Contains(t, prompt, "Retrieval Augmented Agents")
	assert.Contains(t, prompt, "Routes tokens to experts.")

	// Shared keywords are counted and listed most frequent first.
	assert.Contains(t, prompt, "RAG (2)")
	assert.Contains(t, prompt, "MoE (1)")
	assert.Less(t, strings.Index(prompt, "RAG (2)"), strings.Index(prompt, "MoE (1)"))
}

func TestNewGeminiRejectsUnknownProvider(t *testing.T) {
	_, err := summarizer.NewGemini(config.LLMConfig{Provider: "openai"})
	assert.Error(t, err)
}

func TestQuotaLimiterDailyBudget(t *testing.T) {
	limiter := summarizer.NewQuotaLimiter(config.QuotaConfig{RequestsPerDay: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.WaitAndReserve(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := limiter.WaitAndReserve(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "third call should be rejected")
}

func TestQuotaLimiterUnlimited(t *testing.T) {
	limiter := summarizer.NewQuotaLimiter(config.QuotaConfig{})
	for i := 0; i < 10; i++ {
		ok, err := limiter.WaitAndReserve(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestQuotaLimiterPacingHonorsCancel(t *testing.T) {
	limiter := summarizer.NewQuotaLimiter(config.QuotaConfig{RequestsPerMinute: 1})

	ok, err := limiter.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = limiter.WaitAndReserve(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
