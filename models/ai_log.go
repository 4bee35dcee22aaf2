package models

import "time"

// AILog records one summarization LLM call for auditing.
type AILog struct {
	RunID            string    `bson:"run_id" json:"run_id"`
	PaperID          string    `bson:"paper_id" json:"paper_id"`
	Model            string    `bson:"model" json:"model"`
	PromptTokens     int64     `bson:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int64     `bson:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int64     `bson:"total_tokens" json:"total_tokens"`
	DurationMs       int64     `bson:"duration_ms" json:"duration_ms"`
	Success          bool      `bson:"success" json:"success"`
	ResponseExcerpt  string    `bson:"response_excerpt" json:"response_excerpt"`
	RequestedAt      time.Time `bson:"requested_at" json:"requested_at"`
	CompletedAt      time.Time `bson:"completed_at" json:"completed_at"`
}
