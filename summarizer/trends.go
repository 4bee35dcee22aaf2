package summarizer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"

	"arxiv-daily/models"
)

const trendInstructionTemplate = `
You are a senior technical reviewer writing the opening section of a daily
arXiv digest. Given one day's reviewed papers with their keywords and
summaries, write a trend overview:
- Group the papers into 2-4 themes using the shared keywords, leading each
  theme with its most representative paper.
- Note a direction or shift worth watching when the papers support one.
- No more than 200 words. Plain text only, no markdown, no preamble.
- Write in %s.
`

// Trends writes a cross-paper overview of one day's summaries. One call
// per day, not per paper, so it runs outside the summary quota.
func (g *Gemini) Trends(ctx context.Context, entries []models.PaperSummary) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		return "", err
	}

	instruction := fmt.Sprintf(trendInstructionTemplate, g.cfg.Language)
	result, err := client.Models.GenerateContent(
		ctx,
		g.cfg.Model,
		genai.Text(BuildTrendPrompt(entries)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		},
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Text()), nil
}

// BuildTrendPrompt lays out the day's papers with their keywords counted
// across the batch, most frequent first, so the model can name the
// dominant themes without an embedding step.
func BuildTrendPrompt(entries []models.PaperSummary) string {
	counts := map[string]int{}
	for _, e := range entries {
		for _, k := range e.AI.Keywords {
			counts[k]++
		}
	}
	keywords := make([]string, 0, len(counts))
	for k := range counts {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	var b strings.Builder
	if len(keywords) > 0 {
		b.WriteString("Keyword frequency: ")
		for i, k := range keywords {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%d)", k, counts[k])
		}
		b.WriteString("\n\n")
	}

	b.WriteString("Papers:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s [%s]\n", e.Paper.Title, strings.Join(e.AI.Keywords, ", "))
		if e.AI.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", e.AI.Summary)
		}
	}
	return b.String()
}
