package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/hyperjump/ragscope/internal/chart"
	"github.com/hyperjump/ragscope/internal/models"
	"github.com/hyperjump/ragscope/internal/views"
)

func renderDoc(t *testing.T, p Page) *goquery.Document {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, p); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestRender_EveryPageWithZeroData(t *testing.T) {
	tests := []struct {
		page string
		data any
		want string
	}{
		{PageOverview, OverviewData{}, "No questions yet – ask something on the Questions tab."},
		{PageCorpus, CorpusData{}, "No documents yet"},
		{PageQuestions, QuestionsData{Modes: models.Modes}, "Ask a question to visualize retrieval flow."},
		{PageLogs, LogsData{}, "No logs yet – ask some questions on the Questions page."},
		{PageFreshness, FreshnessData{}, "No freshness data yet"},
		{PageConceptGraph, ConceptGraphData{Empty: true}, "Upload PDFs and ask a few questions first to build the graph."},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			doc := renderDoc(t, Page{Name: tt.page, Data: tt.data})
			if !strings.Contains(doc.Text(), tt.want) {
				t.Errorf("page %s missing %q", tt.page, tt.want)
			}
			if got := doc.Find("nav a.active").Length(); got != 1 {
				t.Errorf("active nav items = %d, want 1", got)
			}
		})
	}
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Render(&bytes.Buffer{}, Page{Name: "nope"}); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestRender_Alert(t *testing.T) {
	doc := renderDoc(t, Page{Name: PageCorpus, Alert: "Upload failed", Data: CorpusData{}})
	if got := strings.TrimSpace(doc.Find(".alert").Text()); got != "Upload failed" {
		t.Errorf("alert = %q", got)
	}
}

func TestRender_BusyButtons(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		data      any
		wantLabel string
		disabled  bool
	}{
		{"ask idle", PageQuestions, QuestionsData{Modes: models.Modes}, "Ask", false},
		{"ask busy", PageQuestions, QuestionsData{Modes: models.Modes, Busy: true}, "Retrieving...", true},
		{"upload idle", PageCorpus, CorpusData{}, "Upload", false},
		{"upload busy", PageCorpus, CorpusData{Uploading: true}, "Uploading...", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := renderDoc(t, Page{Name: tt.page, Data: tt.data})
			button := doc.Find("main form[data-busy-label] button[type=submit]")
			if button.Length() != 1 {
				t.Fatalf("submit buttons = %d, want 1", button.Length())
			}
			if got := strings.TrimSpace(button.Text()); got != tt.wantLabel {
				t.Errorf("label = %q, want %q", got, tt.wantLabel)
			}
			if _, got := button.Attr("disabled"); got != tt.disabled {
				t.Errorf("disabled = %v, want %v", got, tt.disabled)
			}
		})
	}
}

func TestRender_CorpusPendingFile(t *testing.T) {
	doc := renderDoc(t, Page{Name: PageCorpus, Data: CorpusData{Pending: "week9.pdf"}})
	if got := doc.Find("#pending-file code").Text(); got != "week9.pdf" {
		t.Errorf("pending file = %q", got)
	}
	if renderDoc(t, Page{Name: PageCorpus, Data: CorpusData{}}).Find("#pending-file").Length() != 0 {
		t.Error("pending notice shown without a pending file")
	}
}

func TestRender_OverviewCharts(t *testing.T) {
	data := OverviewData{
		Cards:          []views.Card{{Label: "Documents", Value: "3"}},
		QuestionsChart: chart.NewLine([]models.DayCount{{Day: "Mon", Count: 1}, {Day: "Tue", Count: 3}}, 0, 0),
		ModeChart:      chart.NewBars([]models.ModeCount{{Mode: "HYBRID", Count: 3}}, 0, 0),
	}
	doc := renderDoc(t, Page{Name: PageOverview, Data: data})
	if got := doc.Find("#questions-over-time circle").Length(); got != 2 {
		t.Errorf("line points = %d, want 2", got)
	}
	if got := doc.Find("#mode-usage rect").Length(); got != 1 {
		t.Errorf("bars = %d, want 1", got)
	}
	if got := doc.Find(".stat .value").First().Text(); got != "3" {
		t.Errorf("card value = %q", got)
	}
}

func TestRender_QuestionsAnswer(t *testing.T) {
	reason := "Nothing in the slides."
	data := QuestionsData{
		Form:  models.QueryRequest{Question: "q", Mode: models.ModeDense, TopK: 3},
		Modes: models.Modes,
		Response: &models.RAGResponse{
			Answer:        "**Attention** is all you need<script>alert(1)</script>",
			Answerability: models.AnswerabilityLow,
			Refused:       true,
			Reason:        &reason,
			Citations:     []models.Citation{{DocTitle: "Week 4", PageNumber: 12, ScoreFinal: 0.5}},
			RetrievalGraph: models.Graph{
				Nodes: []models.Node{{ID: "q", Label: "Q", Type: models.NodeQuery}, {ID: "c", Label: "C", Type: models.NodeChunk, Glow: true}},
				Edges: []models.Edge{{Source: "q", Target: "c", Weight: 0.91}},
			},
		},
	}
	doc := renderDoc(t, Page{Name: PageQuestions, Data: data})
	if doc.Find("#answer .answer strong").First().Text() != "Attention" {
		t.Error("markdown should render bold text")
	}
	if doc.Find("#answer script").Length() != 0 {
		t.Error("answer HTML must be sanitised")
	}
	if !strings.Contains(doc.Find(".refused").Text(), reason) {
		t.Error("refusal reason missing")
	}
	if !strings.Contains(doc.Find("#citations").Text(), "[1] Week 4 – p12") {
		t.Errorf("citation text = %q", doc.Find("#citations").Text())
	}
	if doc.Find("#retrieval-graph .node.glow").Length() != 1 {
		t.Error("glowing chunk node missing")
	}
	if !strings.Contains(doc.Find("#retrieval-graph").Text(), "w=0.91") {
		t.Error("edge weight badge missing")
	}
	if v, _ := doc.Find(`select[name=mode] option[selected]`).Attr("value"); v != models.ModeDense {
		t.Errorf("selected mode = %q", v)
	}
}

func TestMarkdown_Sanitises(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	out := string(r.Markdown("[x](javascript:alert(1)) <img src=x onerror=alert(1)>"))
	if strings.Contains(out, "javascript:") || strings.Contains(out, "onerror") {
		t.Errorf("unsafe markup survived: %s", out)
	}
}

func TestBadges(t *testing.T) {
	if OutcomeBadge(models.OutcomeRefused).Text != "Refused" {
		t.Error("refused badge")
	}
	if AnswerabilityBadge(models.AnswerabilityHigh).Class != "badge-green" {
		t.Error("high badge")
	}
	if JoinOrDash(nil) != "–" || JoinOrDash([]string{"a", "b"}) != "a, b" {
		t.Error("JoinOrDash")
	}
}
