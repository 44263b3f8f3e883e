package ragapi

import (
	"context"
	"io"
	"net/url"

	"github.com/hyperjump/ragscope/internal/models"
)

// Backend paths.
const (
	PathOverview     = "/api/rag/overview"
	PathLogs         = "/api/rag/logs"
	PathQuestions    = "/api/rag/questions"
	PathFreshness    = "/api/rag/freshness"
	PathQuery        = "/api/rag/query"
	PathDocs         = "/api/docs"
	PathConceptGraph = "/api/concept-graph"
)

// UploadField is the multipart field name for document uploads.
const UploadField = "file"

// Overview fetches aggregate stats.
func (c *Client) Overview(ctx context.Context) (*models.OverviewStats, error) {
	var out models.OverviewStats
	if err := c.Get(ctx, PathOverview, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logs fetches the full question log, newest first.
func (c *Client) Logs(ctx context.Context) ([]models.LogEntry, error) {
	var out models.LogsResponse
	if err := c.Get(ctx, PathLogs, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// Questions fetches distinct previously asked questions with repeat counts.
func (c *Client) Questions(ctx context.Context) ([]models.QuestionCount, error) {
	var out []models.QuestionCount
	if err := c.Get(ctx, PathQuestions, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Freshness fetches the snapshot timeline for one question.
func (c *Client) Freshness(ctx context.Context, question string) (*models.FreshnessResponse, error) {
	var out models.FreshnessResponse
	path := PathFreshness + "?" + url.Values{"question": {question}}.Encode()
	if err := c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query submits a question. The request is sent as given; callers validate first.
func (c *Client) Query(ctx context.Context, req *models.QueryRequest) (*models.RAGResponse, error) {
	var out models.RAGResponse
	if err := c.PostJSON(ctx, PathQuery, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Documents fetches the corpus document list.
func (c *Client) Documents(ctx context.Context) ([]models.Document, error) {
	var out models.DocumentsResponse
	if err := c.Get(ctx, PathDocs, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// UploadDocument posts one file to the document-creation endpoint.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	var out models.UploadResult
	if err := c.PostFile(ctx, PathDocs, UploadField, filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConceptGraph fetches the global document/concept graph.
func (c *Client) ConceptGraph(ctx context.Context) (*models.Graph, error) {
	var out models.Graph
	if err := c.Get(ctx, PathConceptGraph, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
