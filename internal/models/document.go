// Package models defines the wire types exchanged with the RAG backend: documents,
// question logs, query responses, graphs, and aggregate stats.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Document is a corpus document as listed by GET /api/docs.
type Document struct {
	DocID      string    `json:"doc_id"`
	Title      string    `json:"title"`
	SourceType string    `json:"source_type"`
	Topics     []string  `json:"topics"`
	NumChunks  int       `json:"num_chunks"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`
}

// DocumentsResponse is the body of GET /api/docs.
type DocumentsResponse struct {
	Documents []Document `json:"documents"`
}

// UploadResult is the body returned by POST /api/docs. The dashboard only needs
// to know the upload succeeded; fields are informational.
type UploadResult struct {
	DocID     string `json:"doc_id,omitempty"`
	Title     string `json:"title,omitempty"`
	NumChunks int    `json:"num_chunks,omitempty"`
}

// timestampLayouts are tried in order. The backend emits ISO-8601, with or without zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a backend time value. Raw keeps the original text so values that
// fail to parse can still be shown.
type Timestamp struct {
	time.Time
	Raw string
}

// ParseTimestamp parses s with the accepted layouts. Values without a zone are
// local time. The zero Time is kept when nothing matches.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	ts := Timestamp{Raw: s}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			ts.Time = t
			break
		}
	}
	return ts
}

// UnmarshalJSON accepts a string or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}

// MarshalJSON writes the raw text back out.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw == "" && !t.Time.IsZero() {
		return json.Marshal(t.Time.Format(time.RFC3339Nano))
	}
	return json.Marshal(t.Raw)
}

// Format renders the timestamp in local time with layout, falling back to Raw.
func (t Timestamp) Format(layout string) string {
	if t.Time.IsZero() {
		return t.Raw
	}
	return t.Time.Local().Format(layout)
}
