package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/askksa/askksa/internal/keyword"
	"github.com/askksa/askksa/internal/models"
)

func sampleResponse() *models.AskResponse {
	return &models.AskResponse{
		Answer:      "Log in to Absher and pay the renewal fee.",
		QueryTimeMS: 42,
		Results: []*models.RetrievalResult{
			{
				Rank:  1,
				Score: 0.91,
				Chunk: &models.Chunk{
					ID:        "iqama-renewal_0",
					Title:     "Iqama Renewal",
					SourceURL: "https://example.sa/iqama",
					Content:   "full content",
				},
				TextPreview: "full content",
			},
		},
	}
}

func TestWriteAskResponseText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAskResponse(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatalf("WriteAskResponse() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Log in to Absher", "1. Iqama Renewal", "https://example.sa/iqama", "full content"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteAskResponseJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAskResponse(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteAskResponse() error = %v", err)
	}
	var decoded models.AskResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Answer != "Log in to Absher and pay the renewal fee." {
		t.Errorf("Answer = %q", decoded.Answer)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Rank != 1 {
		t.Errorf("Results = %+v", decoded.Results)
	}
}

func TestWriteKeywordResults(t *testing.T) {
	hits := []*keyword.Result{{ID: "iqama-renewal", Score: 1.5}}

	var buf bytes.Buffer
	if err := WriteKeywordResults(&buf, "iqama", hits, OutputText); err != nil {
		t.Fatalf("WriteKeywordResults() error = %v", err)
	}
	if !strings.Contains(buf.String(), "iqama-renewal") {
		t.Errorf("output missing hit ID:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteKeywordResults(&buf, "iqama", hits, OutputJSON); err != nil {
		t.Fatalf("WriteKeywordResults() error = %v", err)
	}
	var decoded struct {
		Hits []*keyword.Result `json:"hits"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Hits) != 1 {
		t.Errorf("Hits = %+v", decoded.Hits)
	}
}
