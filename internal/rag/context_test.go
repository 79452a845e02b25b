package rag

import (
	"strings"
	"testing"

	"github.com/askksa/askksa/internal/models"
)

func result(rank int, title, url, content string) *models.RetrievalResult {
	return &models.RetrievalResult{
		Rank:        rank,
		Score:       1.0 / float64(rank),
		Chunk:       &models.Chunk{ID: "c", Title: title, SourceURL: url, Content: content},
		TextPreview: CleanPreview(content),
	}
}

func TestBuildContext(t *testing.T) {
	results := []*models.RetrievalResult{
		result(1, "Iqama Renewal", "https://example.sa/iqama", "Full renewal steps."),
		result(2, "Visit Visa", "", "Visit visa details."),
	}
	got := BuildContext(results)

	want := "Source 1: Iqama Renewal\nURL: https://example.sa/iqama\nFull renewal steps.\n\nSource 2: Visit Visa\nVisit visa details."
	if got != want {
		t.Errorf("BuildContext() = %q, want %q", got, want)
	}
}

func TestBuildContextEmpty(t *testing.T) {
	got := BuildContext(nil)
	if got != NoContextSentinel {
		t.Errorf("BuildContext(nil) = %q, want sentinel", got)
	}
	if got == "" {
		t.Error("sentinel must not be the empty string")
	}
}

func TestBuildContextNeverTruncates(t *testing.T) {
	long := strings.Repeat("Renewal requires steps. ", 100)
	got := BuildContext([]*models.RetrievalResult{result(1, "Long Article", "", long)})
	if !strings.Contains(got, long) {
		t.Error("full chunk content must appear verbatim in the context")
	}
}

func TestBuildContextIdempotent(t *testing.T) {
	results := []*models.RetrievalResult{result(1, "A", "https://a", "content a")}
	if BuildContext(results) != BuildContext(results) {
		t.Error("BuildContext must be deterministic")
	}
}

func TestCleanPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"image stripped", "before ![alt text](https://img.png) after", "before after"},
		{"link collapsed", "see [Absher portal](https://absher.sa) for details", "see Absher portal for details"},
		{"whitespace collapsed", "line one\n\n  line\ttwo", "line one line two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPreview(tt.content); got != tt.want {
				t.Errorf("CleanPreview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanPreviewTruncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := CleanPreview(long)
	if runes := len([]rune(got)); runes != PreviewMaxRunes+3 {
		t.Errorf("preview length = %d runes, want %d", runes, PreviewMaxRunes+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated preview must end with ellipsis marker")
	}

	short := "short content"
	if got := CleanPreview(short); got != short {
		t.Errorf("CleanPreview(%q) = %q, want unchanged", short, got)
	}
}

func TestCleanPreviewUrdu(t *testing.T) {
	urdu := strings.Repeat("اقامہ کی تجدید ", 30)
	got := CleanPreview(urdu)
	if runes := len([]rune(got)); runes > PreviewMaxRunes+3 {
		t.Errorf("preview length = %d runes, want <= %d", runes, PreviewMaxRunes+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("long Urdu preview must end with ellipsis marker")
	}
}
