// Package cli provides output formatting for the AskKSA command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/askksa/askksa/internal/keyword"
	"github.com/askksa/askksa/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAskResponse writes an answer and its retrieval provenance to w.
func WriteAskResponse(w io.Writer, resp *models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintf(w, "\n%s\n", resp.Answer)
	if len(resp.Results) > 0 {
		fmt.Fprintf(w, "\nSources (%dms):\n", resp.QueryTimeMS)
		for _, r := range resp.Results {
			fmt.Fprintf(w, "  %d. %s (score %.4f)\n", r.Rank, r.Chunk.Title, r.Score)
			if r.Chunk.SourceURL != "" {
				fmt.Fprintf(w, "     %s\n", r.Chunk.SourceURL)
			}
			fmt.Fprintf(w, "     %s\n", r.TextPreview)
		}
	}
	return nil
}

// WriteKeywordResults writes keyword search hits to w.
func WriteKeywordResults(w io.Writer, query string, hits []*keyword.Result, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"query": query, "hits": hits})
	}

	fmt.Fprintf(w, "\n%d hits for %q\n", len(hits), query)
	for i, h := range hits {
		fmt.Fprintf(w, "  %d. %s (score %.4f)\n", i+1, h.ID, h.Score)
	}
	return nil
}
