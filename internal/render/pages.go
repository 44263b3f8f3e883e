package render

import (
	"github.com/hyperjump/ragscope/internal/chart"
	"github.com/hyperjump/ragscope/internal/models"
	"github.com/hyperjump/ragscope/internal/views"
)

// OverviewData feeds the overview page.
type OverviewData struct {
	Cards          []views.Card
	QuestionsChart chart.Line
	ModeChart      chart.Bars
	Recent         []models.LogEntry
}

// NewOverviewData builds the page from loaded views.
func NewOverviewData(o *views.Overview, h *views.History) OverviewData {
	return OverviewData{
		Cards:          o.Cards(),
		QuestionsChart: chart.NewLine(o.QuestionsOverTime(), 0, 0),
		ModeChart:      chart.NewBars(o.ModeUsage(), 0, 0),
		Recent:         h.Entries(),
	}
}

// CorpusData feeds the corpus page.
type CorpusData struct {
	Documents []models.Document
	Selected  *models.Document
	Uploaded  string
	// Pending names a chosen file whose upload failed.
	Pending   string
	Uploading bool
}

// NewCorpusData builds the page from a corpus view. uploaded names a file
// that was just accepted.
func NewCorpusData(v *views.Corpus, uploaded string) CorpusData {
	pending, _ := v.Pending()
	return CorpusData{
		Documents: v.Documents(),
		Selected:  v.Selected(),
		Uploaded:  uploaded,
		Pending:   pending,
		Uploading: v.Uploading(),
	}
}

// QuestionsData feeds the questions page.
type QuestionsData struct {
	Form     models.QueryRequest
	Modes    []string
	MinTopK  int
	MaxTopK  int
	Response *models.RAGResponse
	Busy     bool
}

// NewQuestionsData builds the page from a form.
func NewQuestionsData(f *views.QuestionForm) QuestionsData {
	return QuestionsData{
		Form:     f.Request(),
		Modes:    models.Modes,
		MinTopK:  models.MinTopK,
		MaxTopK:  models.MaxTopK,
		Response: f.Response(),
		Busy:     f.Busy(),
	}
}

// LogsData feeds the logs page.
type LogsData struct {
	Entries         []models.LogEntry
	NumQuestions    int
	GroundedPercent int
}

// FreshnessData feeds the freshness page.
type FreshnessData struct {
	Questions []models.QuestionCount
	Selected  string
	Timeline  *models.FreshnessResponse
}

// ConceptGraphData feeds the concept graph page.
type ConceptGraphData struct {
	Empty     bool
	Documents []models.Node
	Concepts  []models.Node
	Filter    string
}

// NewConceptGraphData builds the page from a loaded view.
func NewConceptGraphData(v *views.ConceptGraph) ConceptGraphData {
	return ConceptGraphData{
		Empty:     v.Empty(),
		Documents: v.Documents(),
		Concepts:  v.VisibleConcepts(),
		Filter:    v.Filter(),
	}
}
