package rag

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/askksa/askksa/internal/models"
	"github.com/askksa/askksa/pkg/utils"
)

// NoContextSentinel is returned by BuildContext when retrieval found
// nothing. It is never the empty string, so the generation step can state
// that no relevant information was found instead of fabricating an answer.
const NoContextSentinel = "No relevant context was found in the knowledge base for this question."

// PreviewMaxRunes is the preview length limit before the ellipsis marker.
const PreviewMaxRunes = 200

var (
	imageMarkup = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkMarkup  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// BuildContext renders retrieval results into one grounding block per
// result, in rank order. Each block carries the source title, the URL when
// present, and the chunk's full content. Previews are never substituted for
// content here; truncation would silently drop information the model is
// asked to reason over.
func BuildContext(results []*models.RetrievalResult) string {
	if len(results) == 0 {
		return NoContextSentinel
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		lines := []string{fmt.Sprintf("Source %d: %s", i+1, r.Chunk.Title)}
		if r.Chunk.SourceURL != "" {
			lines = append(lines, "URL: "+r.Chunk.SourceURL)
		}
		lines = append(lines, r.Chunk.Content)
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// CleanPreview derives a display preview from chunk content: image markup
// stripped, link markup collapsed to its visible text, whitespace collapsed,
// then truncated to PreviewMaxRunes with an ellipsis marker.
func CleanPreview(content string) string {
	s := imageMarkup.ReplaceAllString(content, "")
	s = linkMarkup.ReplaceAllString(s, "$1")
	s = utils.CollapseWhitespace(s)
	return utils.TruncateRunes(s, PreviewMaxRunes)
}
