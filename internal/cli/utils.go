// Package cli writes dashboard views to a terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/ragscope/internal/models"
	"github.com/hyperjump/ragscope/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one row per line, tab separated.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact:
		return OutputCompact, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

const rule = "─────────────────────────────────────────────────────────"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outcomeLabel matches the dashboard badges.
func outcomeLabel(outcome string) string {
	switch outcome {
	case models.OutcomeGrounded:
		return "yes"
	case models.OutcomeRefused:
		return "refused"
	default:
		return "no"
	}
}

func docsOrDash(docs []string) string {
	if len(docs) == 0 {
		return "–"
	}
	return strings.Join(docs, ", ")
}

func oneLine(s string, max int) string {
	return utils.Truncate(strings.Join(strings.Fields(s), " "), max)
}
