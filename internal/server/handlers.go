package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperjump/ragscope/internal/export"
	"github.com/hyperjump/ragscope/internal/extract"
	"github.com/hyperjump/ragscope/internal/models"
	"github.com/hyperjump/ragscope/internal/render"
	"github.com/hyperjump/ragscope/internal/views"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Alerts shown when a mutation fails. AlertUploadTooLarge takes the limit in MiB.
const (
	AlertUploadFailed   = "Upload failed – check the server log for details."
	AlertQueryFailed    = "Query failed – is the backend running and are PDFs uploaded?"
	AlertBusy           = "A request is already in progress – wait for it to finish."
	AlertUploadTooLarge = "File too large – the upload limit is %d MB."
)

// maxUploadBytes bounds a multipart upload.
const maxUploadBytes = 64 << 20

// uploadSourceWeb labels dashboard uploads in ragscope_corpus_uploads_total.
const uploadSourceWeb = "web"

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	o := views.NewOverview(s.backend, s.logger)
	h := views.NewHistory(s.backend, s.logger)
	var g errgroup.Group
	g.Go(func() error { o.Load(r.Context()); return nil })
	g.Go(func() error { h.Load(r.Context()); return nil })
	_ = g.Wait()
	s.render(w, http.StatusOK, render.Page{Name: render.PageOverview, Data: render.NewOverviewData(o, h)})
}

func (s *Server) newCorpus() *views.Corpus {
	return views.NewCorpus(s.backend, s.logger, views.WithPreflight(extract.Preflight))
}

func (s *Server) newQuestionForm() *views.QuestionForm {
	return views.NewQuestionForm(s.backend, s.logger, QuestionDefaults(s.config))
}

// handleCorpus mounts the corpus view. An upload still in flight keeps its
// view, so the page shows it as busy.
func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	v, _ := sessionFrom(r.Context()).corpusView(true, s.newCorpus)
	v.Load(r.Context())
	if doc := r.URL.Query().Get("doc"); doc != "" {
		v.Select(doc)
	}
	data := render.NewCorpusData(v, r.URL.Query().Get("uploaded"))
	s.render(w, http.StatusOK, render.Page{Name: render.PageCorpus, Data: data})
}

// handleUpload sends the posted file to the backend. Success redirects back to
// the corpus page; failure re-renders it with an alert and the list as it was.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	v, fresh := sessionFrom(r.Context()).corpusView(false, s.newCorpus)
	fail := func(status int, alert string) {
		if fresh {
			v.Load(r.Context())
		}
		s.render(w, status, render.Page{Name: render.PageCorpus, Alert: alert, Data: render.NewCorpusData(v, "")})
	}
	if v.Uploading() {
		fail(http.StatusConflict, AlertBusy)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	name, content, err := readUpload(r)
	if err == nil {
		_, err = v.UploadFile(r.Context(), name, content)
		if !errors.Is(err, views.ErrBusy) {
			s.observeUpload(err)
		}
	}
	if err == nil {
		s.logger.Info("dashboard upload", zap.String("file", name))
		http.Redirect(w, r, "/corpus?uploaded="+url.QueryEscape(name), http.StatusSeeOther)
		return
	}

	s.logger.Warn("dashboard upload failed", zap.String("file", name), zap.Error(err))
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, views.ErrBusy):
		fail(http.StatusConflict, AlertBusy)
	case errors.As(err, &tooLarge):
		fail(http.StatusRequestEntityTooLarge, fmt.Sprintf(AlertUploadTooLarge, tooLarge.Limit>>20))
	case errors.Is(err, views.ErrNoFile), errors.Is(err, extract.ErrNotPDF):
		fail(http.StatusBadRequest, AlertUploadFailed)
	default:
		fail(http.StatusBadGateway, AlertUploadFailed)
	}
}

// readUpload returns the name and bytes of the "file" form field.
// A missing or unnamed file is views.ErrNoFile.
func readUpload(r *http.Request) (string, []byte, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil, views.ErrNoFile
		}
		return "", nil, err
	}
	defer file.Close()
	if strings.TrimSpace(header.Filename) == "" {
		return "", nil, views.ErrNoFile
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return header.Filename, nil, err
	}
	return header.Filename, content, nil
}

func (s *Server) observeUpload(err error) {
	if s.metrics != nil {
		s.metrics.ObserveUpload(uploadSourceWeb, err)
	}
}

// handleQuestionForm mounts the ask form. A question still being answered
// keeps its form, so the page shows it as busy.
func (s *Server) handleQuestionForm(w http.ResponseWriter, r *http.Request) {
	f := sessionFrom(r.Context()).questionForm(true, s.newQuestionForm)
	s.render(w, http.StatusOK, render.Page{Name: render.PageQuestions, Data: render.NewQuestionsData(f)})
}

// handleAsk submits the session's form. The previous answer stays on the
// page when the submission is rejected or fails.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	f := sessionFrom(r.Context()).questionForm(false, s.newQuestionForm)
	page := func(status int, alert string) {
		s.render(w, status, render.Page{Name: render.PageQuestions, Alert: alert, Data: render.NewQuestionsData(f)})
	}
	if f.Busy() {
		page(http.StatusConflict, AlertBusy)
		return
	}
	if err := r.ParseForm(); err != nil {
		page(http.StatusBadRequest, err.Error())
		return
	}
	f.SetQuestion(r.PostFormValue("question"))
	if mode := r.PostFormValue("mode"); mode != "" {
		if err := f.SetMode(mode); err != nil {
			page(http.StatusBadRequest, err.Error())
			return
		}
	}
	if raw := strings.TrimSpace(r.PostFormValue("top_k")); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			page(http.StatusBadRequest, fmt.Errorf("%w: %q is not a number", models.ErrTopKRange, raw).Error())
			return
		}
		f.SetTopK(k)
	}
	f.SetRerank(r.PostFormValue("rerank") == "on")

	_, err := f.Submit(r.Context())
	switch {
	case err == nil:
		page(http.StatusOK, "")
	case errors.Is(err, views.ErrBusy):
		page(http.StatusConflict, AlertBusy)
	case errors.Is(err, models.ErrEmptyQuestion), errors.Is(err, models.ErrTopKRange), errors.Is(err, models.ErrUnknownMode):
		page(http.StatusBadRequest, err.Error())
	default:
		page(http.StatusBadGateway, AlertQueryFailed)
	}
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	v := views.NewLogs(s.backend, s.logger)
	v.Load(r.Context())
	data := render.LogsData{
		Entries:         v.Entries(),
		NumQuestions:    v.NumQuestions(),
		GroundedPercent: v.GroundedPercent(),
	}
	s.render(w, http.StatusOK, render.Page{Name: render.PageLogs, Data: data})
}

// handleLogsExport streams the full log as a spreadsheet. Unlike the page,
// a failed fetch is an error rather than an empty file.
func (s *Server) handleLogsExport(w http.ResponseWriter, r *http.Request) {
	logs, err := s.backend.Logs(r.Context())
	if err != nil {
		s.logger.Error("logs export: fetch failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, "could not fetch logs")
		return
	}
	var buf bytes.Buffer
	if err := export.WriteLogsXLSX(&buf, logs); err != nil {
		s.logger.Error("logs export: write failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", export.XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="rag-logs.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleFreshness(w http.ResponseWriter, r *http.Request) {
	v := views.NewFreshness(s.backend, s.logger)
	defer v.Close()
	v.LoadSelecting(r.Context(), r.URL.Query().Get("question"))
	data := render.FreshnessData{
		Questions: v.Questions(),
		Selected:  v.Selected(),
		Timeline:  v.Timeline(),
	}
	s.render(w, http.StatusOK, render.Page{Name: render.PageFreshness, Data: data})
}

func (s *Server) handleConceptGraph(w http.ResponseWriter, r *http.Request) {
	v := views.NewConceptGraph(s.backend, s.logger)
	v.Load(r.Context())
	v.SetFilter(r.URL.Query().Get("doc"))
	s.render(w, http.StatusOK, render.Page{Name: render.PageConceptGraph, Data: render.NewConceptGraphData(v)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "api": s.config.API.BaseURL})
}

// render writes a page. Template errors become a plain 500.
func (s *Server) render(w http.ResponseWriter, status int, p render.Page) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, p); err != nil {
		s.logger.Error("render failed", zap.String("page", p.Name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
