package domain

import "time"

// Category is the closed set of lead labels. Values are the wire strings.
type Category string

const (
	CategoryInterested    Category = "Interested"
	CategoryMeetingBooked Category = "Meeting Booked"
	CategoryNotInterested Category = "Not Interested"
	CategorySpam          Category = "Spam"
	CategoryOutOfOffice   Category = "Out of Office"

	// CategoryUncategorized is the sentinel for "could not classify". Not a label.
	CategoryUncategorized Category = "Uncategorized"
)

// Categories lists the five labels in wire order.
var Categories = []Category{
	CategoryInterested,
	CategoryMeetingBooked,
	CategoryNotInterested,
	CategorySpam,
	CategoryOutOfOffice,
}

// ParseCategory returns the label whose wire string equals s exactly.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return CategoryUncategorized, false
}

// IsLabel reports whether c is one of the five labels.
func (c Category) IsLabel() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

// ClassificationMethod records which tier decided the result.
type ClassificationMethod string

const (
	MethodRule   ClassificationMethod = "Rule"
	MethodLLM    ClassificationMethod = "LLM"
	MethodFailed ClassificationMethod = "Failed"
)

const (
	RuleConfidence = 0.95
	LLMConfidence  = 0.85
)

// ClassificationResult is the outcome of classifying one message.
type ClassificationResult struct {
	Category     Category             `json:"category" bson:"category"`
	Confidence   float64              `json:"confidence" bson:"confidence"`
	Method       ClassificationMethod `json:"method" bson:"method"`
	ClassifiedAt time.Time            `json:"classified_at" bson:"classified_at"`
	LatencyMs    int64                `json:"latency_ms" bson:"latency_ms"`
	Signals      []string             `json:"signals,omitempty" bson:"signals,omitempty"`
	Error        string               `json:"error,omitempty" bson:"error,omitempty"`
}

// FailedResult builds the result for a message that could not be processed.
func FailedResult(err error, at time.Time) *ClassificationResult {
	r := &ClassificationResult{
		Category:     CategoryUncategorized,
		Confidence:   0,
		Method:       MethodFailed,
		ClassifiedAt: at,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// ClassificationRecord pairs a message with its result for sinks and events.
type ClassificationRecord struct {
	ID      string                `json:"id" bson:"_id"`
	Message *NormalizedMessage    `json:"message" bson:"message"`
	Result  *ClassificationResult `json:"result" bson:"result"`
}

// BatchStats counts how a batch was decided.
type BatchStats struct {
	Total      int `json:"total"`
	Rule       int `json:"rule"`
	LLM        int `json:"llm"`
	Failed     int `json:"failed"`
	Interested int `json:"interested"`
}

// Record accumulates one result.
func (s *BatchStats) Record(r *ClassificationResult) {
	s.Total++
	switch r.Method {
	case MethodRule:
		s.Rule++
	case MethodLLM:
		s.LLM++
	default:
		s.Failed++
	}
	if r.Category == CategoryInterested {
		s.Interested++
	}
}
