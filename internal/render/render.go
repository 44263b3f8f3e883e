// Package render turns view state into HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/hyperjump/ragscope/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names. Each one is a template file and a nav key.
const (
	PageOverview     = "overview"
	PageCorpus       = "corpus"
	PageQuestions    = "questions"
	PageLogs         = "logs"
	PageFreshness    = "freshness"
	PageConceptGraph = "concept-graph"
)

// NavItem is one entry of the top navigation.
type NavItem struct {
	Page  string
	Label string
	Href  string
}

// Nav lists the pages in display order.
var Nav = []NavItem{
	{PageOverview, "Overview", "/"},
	{PageCorpus, "Corpus", "/corpus"},
	{PageQuestions, "Questions", "/questions"},
	{PageLogs, "Logs", "/logs"},
	{PageFreshness, "Freshness", "/freshness"},
	{PageConceptGraph, "Concept graph", "/concept-graph"},
}

// Page is what the layout receives. Data is the page-specific struct.
type Page struct {
	Name  string
	Title string
	Alert string
	Data  any
}

type layoutData struct {
	Page
	Nav []NavItem
}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages  map[string]*template.Template
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template, len(Nav)),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
		),
		policy: bluemonday.UGCPolicy(),
	}
	funcs := r.funcs()
	for _, item := range Nav {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+item.Page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", item.Page, err)
		}
		r.pages[item.Page] = t
	}
	return r, nil
}

// Render writes p through the layout. The page is rendered to a buffer first
// so a template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, p Page) error {
	t, ok := r.pages[p.Name]
	if !ok {
		return fmt.Errorf("unknown page %q", p.Name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", layoutData{Page: p, Nav: Nav}); err != nil {
		return fmt.Errorf("render %s: %w", p.Name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Markdown converts src to sanitised HTML.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown":  r.Markdown,
		"localtime": func(ts models.Timestamp) string { return ts.Format("2006-01-02 15:04:05") },
		"clock":     func(ts models.Timestamp) string { return ts.Format("15:04:05") },
		"ms":        func(v float64) string { return fmt.Sprintf("%.1f ms", v) },
		"score":     func(v float64) string { return fmt.Sprintf("%.3f", v) },
		"weight":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"coord":     func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"join":      JoinOrDash,
		"upper":     strings.ToUpper,
		"inc":       func(i int) int { return i + 1 },
		"outcome":   OutcomeBadge,
		"level":     AnswerabilityBadge,
		"edges":     func(g models.Graph, id string) []models.Edge { return g.EdgesOf(id, 3) },
	}
}

// JoinOrDash joins xs with ", " or returns "–" when empty.
func JoinOrDash(xs []string) string {
	if len(xs) == 0 {
		return "–"
	}
	return strings.Join(xs, ", ")
}

// Badge is a CSS class and label pair.
type Badge struct {
	Class string
	Text  string
}

// OutcomeBadge maps an outcome to its table badge.
func OutcomeBadge(outcome string) Badge {
	switch outcome {
	case models.OutcomeGrounded:
		return Badge{"badge-green", "Yes"}
	case models.OutcomeRefused:
		return Badge{"badge-yellow", "Refused"}
	default:
		return Badge{"badge-red", "No"}
	}
}

// AnswerabilityBadge colours an answerability level.
func AnswerabilityBadge(level string) Badge {
	switch level {
	case models.AnswerabilityHigh:
		return Badge{"badge-green", level}
	case models.AnswerabilityMedium:
		return Badge{"badge-yellow", level}
	default:
		return Badge{"badge-red", level}
	}
}
