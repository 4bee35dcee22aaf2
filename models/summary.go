package models

import "time"

// Decision is the reviewer verdict assigned by the LLM.
type Decision string

const (
	DecisionRecommended    Decision = "recommended"
	DecisionBorderline     Decision = "borderline"
	DecisionNotRecommended Decision = "not_recommended"
)

// AIGeneratedInfo holds the structured fields produced by the summarizer.
type AIGeneratedInfo struct {
	Keywords            []string  `bson:"keywords" json:"keywords"`
	CorePainPoint       string    `bson:"core_pain_point" json:"core_pain_point"`
	TechnicalInnovation string    `bson:"technical_innovation" json:"technical_innovation"`
	ApplicationValue    string    `bson:"application_value" json:"application_value"`
	Summary             string    `bson:"summary" json:"summary"`
	Decision            Decision  `bson:"decision" json:"decision"`
	DecisionReason      string    `bson:"decision_reason" json:"decision_reason"`
	ModelName           string    `bson:"model_name" json:"model_name"`
	GeneratedAt         time.Time `bson:"generated_at" json:"generated_at"`
}

// PaperSummary is a paper plus its generated summary, archived by date.
type PaperSummary struct {
	Paper Paper           `bson:"paper" json:"paper"`
	AI    AIGeneratedInfo `bson:"ai_generated_info" json:"ai_generated_info"`

	// ProcessedDate is the archive day key, formatted 2006-01-02.
	ProcessedDate string `bson:"processed_date" json:"processed_date"`
}
