package domain

import (
	"regexp"
	"time"
)

// Placeholders recognised in template bodies.
const (
	PlaceholderName         = "{name}"
	PlaceholderCalendarLink = "{calendar_link}"
	PlaceholderEmail        = "{email}"
	PlaceholderPhone        = "{phone}"
	PlaceholderCurrentRole  = "{current_role}"
)

var placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// KnownPlaceholder reports whether p is one of the supported placeholders.
func KnownPlaceholder(p string) bool {
	switch p {
	case PlaceholderName, PlaceholderCalendarLink, PlaceholderEmail, PlaceholderPhone, PlaceholderCurrentRole:
		return true
	}
	return false
}

// Placeholders returns every {token} in body, in order of appearance.
func Placeholders(body string) []string {
	return placeholderPattern.FindAllString(body, -1)
}

// Urgency of a template scenario.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ReplyTemplateEntry is one reusable reply scenario.
type ReplyTemplateEntry struct {
	ScenarioID     string  `json:"scenario_id" yaml:"scenario_id"`
	PatternText    string  `json:"pattern_text" yaml:"pattern"`
	Context        string  `json:"context" yaml:"context"`
	TemplateBody   string  `json:"template_body" yaml:"template"`
	Category       string  `json:"category" yaml:"category"`
	Urgency        Urgency `json:"urgency" yaml:"urgency"`
	BaseConfidence float64 `json:"base_confidence" yaml:"confidence"`
}

// EmbeddingText is what gets embedded for similarity search.
func (e *ReplyTemplateEntry) EmbeddingText() string {
	return e.PatternText + " " + e.Context
}

// SimilarityMatch is one index hit.
type SimilarityMatch struct {
	Entry      ReplyTemplateEntry `json:"entry"`
	Similarity float64            `json:"similarity"`
}

// ReplyMethod records how a suggestion was produced.
type ReplyMethod string

const (
	ReplyMethodTemplate ReplyMethod = "Template"
	ReplyMethodRAG      ReplyMethod = "RAG"
	ReplyMethodFailed   ReplyMethod = "Failed"
)

// ReplyRequest is the input for a reply suggestion.
type ReplyRequest struct {
	Body    string `json:"body"`
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
}

// ReplySuggestion is the result of a suggestion request.
type ReplySuggestion struct {
	Success        bool        `json:"success"`
	SuggestionText string      `json:"suggestion_text,omitempty"`
	Confidence     float64     `json:"confidence"`
	ScenarioID     string      `json:"scenario_id,omitempty"`
	Similarity     float64     `json:"similarity"`
	Method         ReplyMethod `json:"method"`
	Error          string      `json:"error,omitempty"`
	GeneratedAt    time.Time   `json:"generated_at"`
}

// UserContext is the sender signature substituted into replies.
type UserContext struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	CalendarLink string `json:"calendar_link"`
	CurrentRole  string `json:"current_role"`
	Company      string `json:"company,omitempty"`
	Location     string `json:"location,omitempty"`
}

// TemplateLibraryStats summarises the reply engine.
type TemplateLibraryStats struct {
	TotalTemplates    int         `json:"total_templates"`
	LLMEnabled        bool        `json:"llm_enabled"`
	EmbeddingProvider string      `json:"embedding_provider"`
	UserContext       UserContext `json:"user_context"`
}
