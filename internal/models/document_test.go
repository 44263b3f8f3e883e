package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		parsed bool
		year   int
	}{
		{"rfc3339 with zone", "2025-03-01T10:15:00Z", true, 2025},
		{"python isoformat without zone", "2025-03-01T10:15:00.123456", true, 2025},
		{"space separated", "2024-11-05 08:00:00", true, 2024},
		{"date only", "2023-01-02", true, 2023},
		{"garbage", "last tuesday", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := ParseTimestamp(tt.in)
			if ts.Raw != tt.in {
				t.Errorf("Raw = %q, want %q", ts.Raw, tt.in)
			}
			if tt.parsed == ts.Time.IsZero() {
				t.Fatalf("parsed = %v, want %v", !ts.Time.IsZero(), tt.parsed)
			}
			if tt.parsed && ts.Year() != tt.year {
				t.Errorf("year = %d, want %d", ts.Year(), tt.year)
			}
		})
	}
}

func TestParseTimestamp_zonelessIsLocal(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("UTC+2", 2*60*60)
	t.Cleanup(func() { time.Local = orig })

	ts := ParseTimestamp("2025-03-01T10:15:00")
	if got := ts.Format("15:04"); got != "10:15" {
		t.Errorf("zone-less Format() = %q, want 10:15", got)
	}
	if got := ts.UTC().Hour(); got != 8 {
		t.Errorf("UTC hour = %d, want 8", got)
	}

	withZone := ParseTimestamp("2025-03-01T10:15:00Z")
	if got := withZone.Format("15:04"); got != "12:15" {
		t.Errorf("zoned Format() = %q, want 12:15", got)
	}
}

func TestTimestamp_FormatFallsBackToRaw(t *testing.T) {
	ts := ParseTimestamp("not a time")
	if got := ts.Format(time.Kitchen); got != "not a time" {
		t.Errorf("Format() = %q", got)
	}
}

func TestDocumentsResponse_Decode(t *testing.T) {
	body := `{"documents":[{"doc_id":"d1","title":"Week 1","source_type":"pdf","topics":["parsing"],"num_chunks":12,"created_at":"2025-01-01T00:00:00","updated_at":null}]}`
	var resp DocumentsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Documents) != 1 {
		t.Fatalf("documents = %d", len(resp.Documents))
	}
	d := resp.Documents[0]
	if d.DocID != "d1" || d.NumChunks != 12 || len(d.Topics) != 1 {
		t.Errorf("unexpected document: %+v", d)
	}
	if d.CreatedAt.IsZero() {
		t.Error("created_at should parse")
	}
	if !d.UpdatedAt.IsZero() || d.UpdatedAt.Raw != "" {
		t.Errorf("null updated_at should be empty, got %+v", d.UpdatedAt)
	}
}

func TestLogEntry_Outcome(t *testing.T) {
	tests := []struct {
		grounded, refused bool
		want              string
	}{
		{true, false, OutcomeGrounded},
		{true, true, OutcomeGrounded},
		{false, true, OutcomeRefused},
		{false, false, OutcomeUngrounded},
	}
	for _, tt := range tests {
		e := LogEntry{Grounded: tt.grounded, Refused: tt.refused}
		if got := e.Outcome(); got != tt.want {
			t.Errorf("Outcome(grounded=%v, refused=%v) = %q, want %q", tt.grounded, tt.refused, got, tt.want)
		}
	}
}
