package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/ragscope/internal/models"
	"github.com/hyperjump/ragscope/internal/views"
)

const timeLayout = "2006-01-02 15:04:05"

// barWidth is the length of the longest text bar.
const barWidth = 40

// OverviewOutput is the JSON shape of the overview command.
type OverviewOutput struct {
	Stats  models.OverviewStats `json:"stats"`
	Recent []models.LogEntry    `json:"recent"`
}

// bar scales count against peak to at most barWidth blocks. Non-empty counts
// get at least one block.
func bar(count, peak int) string {
	if count <= 0 || peak <= 0 {
		return ""
	}
	n := count * barWidth / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("▇", n)
}

// WriteOverview writes the stat cards, charts as tables, and recent questions.
func WriteOverview(w io.Writer, o *views.Overview, h *views.History, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, OverviewOutput{Stats: o.Stats(), Recent: h.Entries()})
	case OutputCompact:
		for _, c := range o.Cards() {
			fmt.Fprintf(w, "%s\t%s\n", c.Label, c.Value)
		}
		return nil
	}
	for _, c := range o.Cards() {
		fmt.Fprintf(w, "%-20s %s\n", c.Label, c.Value)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Questions over time")
	if series := o.QuestionsOverTime(); len(series) == 0 {
		fmt.Fprintln(w, "  No questions yet – ask something on the Questions page.")
	} else {
		peak := 0
		for _, d := range series {
			peak = max(peak, d.Count)
		}
		for _, d := range series {
			fmt.Fprintf(w, "  %-12s %4d %s\n", d.Day, d.Count, bar(d.Count, peak))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Retrieval mode usage")
	if modes := o.ModeUsage(); len(modes) == 0 {
		fmt.Fprintln(w, "  No questions yet – experiment with different retrieval modes.")
	} else {
		for _, m := range modes {
			fmt.Fprintf(w, "  %-8s %d\n", m.Mode, m.Count)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent questions")
	recent := h.Entries()
	if len(recent) == 0 {
		fmt.Fprintln(w, "  No questions yet – ask something on the Questions tab.")
		return nil
	}
	for _, e := range recent {
		fmt.Fprintf(w, "  %s  %-7s %-8s %s\n", e.Timestamp.Format("15:04:05"), strings.ToUpper(e.Mode), outcomeLabel(e.Outcome()), oneLine(e.Question, 60))
	}
	return nil
}

// LogsOutput is the JSON shape of the logs command.
type LogsOutput struct {
	NumQuestions    int               `json:"num_questions"`
	GroundedPercent int               `json:"grounded_percent"`
	Logs            []models.LogEntry `json:"logs"`
}

// WriteLogs writes the evaluation header and every log entry.
func WriteLogs(w io.Writer, v *views.Logs, format OutputFormat) error {
	entries := v.Entries()
	switch format {
	case OutputJSON:
		if entries == nil {
			entries = []models.LogEntry{}
		}
		return writeJSON(w, LogsOutput{NumQuestions: v.NumQuestions(), GroundedPercent: v.GroundedPercent(), Logs: entries})
	case OutputCompact:
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%.1f\t%s\n",
				e.LogID, e.Timestamp.Format(timeLayout), e.Mode, e.TopK, outcomeLabel(e.Outcome()), e.Answerability, e.TotalMS, oneLine(e.Question, 80))
		}
		return nil
	}
	fmt.Fprintf(w, "Questions: %d | Grounded rate: %d%%\n", v.NumQuestions(), v.GroundedPercent())
	if len(entries) == 0 {
		fmt.Fprintln(w, "No logs yet – ask some questions on the Questions page.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(w, rule)
		rerank := ""
		if e.Rerank {
			rerank = ", rerank"
		}
		fmt.Fprintf(w, "%s  %s (k=%d%s)\n", e.Timestamp.Format(timeLayout), strings.ToUpper(e.Mode), e.TopK, rerank)
		fmt.Fprintf(w, "Q: %s\n", e.Question)
		fmt.Fprintf(w, "Docs: %s\n", docsOrDash(e.UsedDocs))
		fmt.Fprintf(w, "Grounded: %s | Answerability: %s | Latency: %.1f ms\n", outcomeLabel(e.Outcome()), e.Answerability, e.TotalMS)
	}
	return nil
}

// WriteDocuments writes the corpus list, or the details of selected when non-nil.
func WriteDocuments(w io.Writer, docs []models.Document, selected *models.Document, format OutputFormat) error {
	if selected != nil {
		return writeDocument(w, selected, format)
	}
	switch format {
	case OutputJSON:
		if docs == nil {
			docs = []models.Document{}
		}
		return writeJSON(w, models.DocumentsResponse{Documents: docs})
	case OutputCompact:
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.DocID, d.SourceType, d.NumChunks, d.Title)
		}
		return nil
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents yet – upload the parsing / deep learning / generative AI PDFs.")
		return nil
	}
	fmt.Fprintf(w, "%-40s %-6s %6s  %s\n", "TITLE", "TYPE", "CHUNKS", "UPDATED")
	for _, d := range docs {
		fmt.Fprintf(w, "%-40s %-6s %6d  %s\n", oneLine(d.Title, 37), strings.ToUpper(d.SourceType), d.NumChunks, d.UpdatedAt.Format(timeLayout))
	}
	return nil
}

func writeDocument(w io.Writer, d *models.Document, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, d)
	}
	topics := "Auto-derived from content"
	if len(d.Topics) > 0 {
		topics = strings.Join(d.Topics, ", ")
	}
	if format == OutputCompact {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", d.DocID, d.SourceType, d.NumChunks, d.Title, topics)
		return nil
	}
	fmt.Fprintf(w, "Title:   %s\n", d.Title)
	fmt.Fprintf(w, "Doc ID:  %s\n", d.DocID)
	fmt.Fprintf(w, "Type:    %s\n", d.SourceType)
	fmt.Fprintf(w, "Chunks:  %d\n", d.NumChunks)
	fmt.Fprintf(w, "Created: %s\n", d.CreatedAt.Format(timeLayout))
	fmt.Fprintf(w, "Updated: %s\n", d.UpdatedAt.Format(timeLayout))
	fmt.Fprintf(w, "Topics:  %s\n", topics)
	return nil
}

// WriteAnswer writes a query response with citations and the retrieval graph.
func WriteAnswer(w io.Writer, resp *models.RAGResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		fmt.Fprintf(w, "%s\t%t\t%.1f\t%s\n", resp.Answerability, resp.Refused, resp.TimingsMS.Total, oneLine(resp.Answer, 200))
		for i, c := range resp.Citations {
			fmt.Fprintf(w, "[%d]\t%s\tp%d\t%.3f\n", i+1, c.DocTitle, c.PageNumber, c.ScoreFinal)
		}
		return nil
	}
	fmt.Fprintf(w, "Answerability: %s | total %.1f ms (retrieval %.1f, generation %.1f)\n",
		resp.Answerability, resp.TimingsMS.Total, resp.TimingsMS.Retrieval, resp.TimingsMS.Generation)
	if resp.Refused {
		fmt.Fprintf(w, "Refused: %s\n", resp.RefusalReason())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, resp.Answer)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Citations")
	if len(resp.Citations) == 0 {
		fmt.Fprintln(w, "  No supporting chunks found.")
	}
	for i, c := range resp.Citations {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "[%d] %s – p%d\n", i+1, c.DocTitle, c.PageNumber)
		fmt.Fprintf(w, "bm25=%.3f / dense=%.3f / final=%.3f\n", c.ScoreBM25, c.ScoreDense, c.ScoreFinal)
		fmt.Fprintf(w, "%s\n", oneLine(c.Snippet, 200))
	}
	g := resp.RetrievalGraph
	if len(g.Nodes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Retrieval graph")
		for _, n := range g.Nodes {
			glow := ""
			if n.Glow {
				glow = " *"
			}
			fmt.Fprintf(w, "  [%s] %s%s\n", n.Type, n.Label, glow)
			for _, e := range g.EdgesOf(n.ID, 3) {
				fmt.Fprintf(w, "      %s -> %s w=%.2f\n", e.Source, e.Target, e.Weight)
			}
		}
	}
	return nil
}

// FreshnessOutput is the JSON shape of the freshness command.
type FreshnessOutput struct {
	Questions []models.QuestionCount   `json:"questions"`
	Selected  string                   `json:"selected"`
	Timeline  *models.FreshnessResponse `json:"timeline"`
}

// WriteFreshness writes the question list and the timeline of the selection.
func WriteFreshness(w io.Writer, v *views.Freshness, format OutputFormat) error {
	tl := v.Timeline()
	switch format {
	case OutputJSON:
		qs := v.Questions()
		if qs == nil {
			qs = []models.QuestionCount{}
		}
		return writeJSON(w, FreshnessOutput{Questions: qs, Selected: v.Selected(), Timeline: tl})
	case OutputCompact:
		if tl == nil {
			return nil
		}
		for _, ex := range tl.Examples {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\n", ex.Timestamp.Format(timeLayout), ex.Outcome(), ex.Answerability, ex.TotalMS, docsOrDash(ex.UsedDocs))
		}
		return nil
	}
	fmt.Fprintln(w, "Questions")
	for _, q := range v.Questions() {
		marker := " "
		if q.Question == v.Selected() {
			marker = ">"
		}
		fmt.Fprintf(w, " %s %s (%d)\n", marker, q.Question, q.Count)
	}
	fmt.Fprintln(w)
	if tl == nil {
		fmt.Fprintln(w, "No freshness data yet – run the same question multiple times while adding or removing PDFs, then come back here.")
		return nil
	}
	fmt.Fprintf(w, "Timeline for: %s (%d runs)\n", tl.Question, len(tl.Examples))
	for _, ex := range tl.Examples {
		docs := "– none –"
		if len(ex.UsedDocs) > 0 {
			docs = strings.Join(ex.UsedDocs, ", ")
		}
		fmt.Fprintf(w, "  %s  %-10s %-6s total %.1f ms  docs: %s\n", ex.Timestamp.Format(timeLayout), ex.Outcome(), ex.Answerability, ex.TotalMS, docs)
	}
	return nil
}

// ConceptsOutput is the JSON shape of the concepts command.
type ConceptsOutput struct {
	Filter    string        `json:"filter,omitempty"`
	Documents []models.Node `json:"documents"`
	Concepts  []models.Node `json:"concepts"`
}

// WriteConcepts writes document nodes and the concepts passing the view's filter.
func WriteConcepts(w io.Writer, v *views.ConceptGraph, format OutputFormat) error {
	docs, concepts := v.Documents(), v.VisibleConcepts()
	switch format {
	case OutputJSON:
		if docs == nil {
			docs = []models.Node{}
		}
		if concepts == nil {
			concepts = []models.Node{}
		}
		return writeJSON(w, ConceptsOutput{Filter: v.Filter(), Documents: docs, Concepts: concepts})
	case OutputCompact:
		for _, c := range concepts {
			fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Label)
		}
		return nil
	}
	if v.Empty() {
		fmt.Fprintln(w, "Upload PDFs and ask a few questions first to build the graph.")
		return nil
	}
	fmt.Fprintln(w, "Documents")
	for _, d := range docs {
		marker := " "
		if d.ID == v.Filter() {
			marker = ">"
		}
		fmt.Fprintf(w, " %s %s (%s)\n", marker, d.Label, d.ID)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Concepts")
	if len(concepts) == 0 {
		fmt.Fprintln(w, "  No concepts yet for this filter.")
		return nil
	}
	labels := make([]string, len(concepts))
	for i, c := range concepts {
		labels[i] = c.Label
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(labels, " · "))
	return nil
}

// WriteUpload reports an accepted upload.
func WriteUpload(w io.Writer, filename string, res *models.UploadResult, docs []models.Document, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	if format == OutputCompact {
		fmt.Fprintf(w, "%s\t%s\t%d\n", filename, res.DocID, len(docs))
		return nil
	}
	fmt.Fprintf(w, "Uploaded %s", filename)
	if res.DocID != "" {
		fmt.Fprintf(w, " as %s", res.DocID)
	}
	fmt.Fprintf(w, "; corpus now has %d documents\n", len(docs))
	return nil
}
