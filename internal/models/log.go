package models

// Answerability levels reported by the backend.
const (
	AnswerabilityHigh   = "HIGH"
	AnswerabilityMedium = "MEDIUM"
	AnswerabilityLow    = "LOW"
)

// LogEntry is one call to /api/rag/query as recorded by the backend.
type LogEntry struct {
	LogID         string    `json:"log_id"`
	Timestamp     Timestamp `json:"timestamp"`
	Question      string    `json:"question"`
	Mode          string    `json:"mode"`
	TopK          int       `json:"top_k"`
	Rerank        bool      `json:"rerank"`
	UsedDocs      []string  `json:"used_docs"`
	Grounded      bool      `json:"grounded"`
	Answerability string    `json:"answerability"`
	Refused       bool      `json:"refused"`
	TotalMS       float64   `json:"total_ms"`
}

// Outcome classifies an answer for badge display: grounded, refused, or ungrounded.
func (e LogEntry) Outcome() string {
	return outcome(e.Grounded, e.Refused)
}

// LogsResponse is the body of GET /api/rag/logs. Entries are newest first.
type LogsResponse struct {
	Logs []LogEntry `json:"logs"`
}

// QuestionCount is one distinct question from GET /api/rag/questions.
type QuestionCount struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
}

// FreshnessExample is one snapshot of a repeated question.
type FreshnessExample struct {
	Timestamp     Timestamp `json:"timestamp"`
	UsedDocs      []string  `json:"used_docs"`
	Grounded      bool      `json:"grounded"`
	Answerability string    `json:"answerability"`
	Refused       bool      `json:"refused"`
	TotalMS       float64   `json:"total_ms"`
}

// Outcome classifies the snapshot the same way as LogEntry.Outcome.
func (e FreshnessExample) Outcome() string {
	return outcome(e.Grounded, e.Refused)
}

// FreshnessResponse is the body of GET /api/rag/freshness. Examples are chronological.
type FreshnessResponse struct {
	Question string             `json:"question"`
	Examples []FreshnessExample `json:"examples"`
}

// Outcome values.
const (
	OutcomeGrounded   = "grounded"
	OutcomeRefused    = "refused"
	OutcomeUngrounded = "ungrounded"
)

func outcome(grounded, refused bool) string {
	switch {
	case grounded:
		return OutcomeGrounded
	case refused:
		return OutcomeRefused
	default:
		return OutcomeUngrounded
	}
}
