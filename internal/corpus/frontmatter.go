// Package corpus parses scraped knowledge-base documents and extracts plain
// text from the file formats the ingest pipeline accepts.
package corpus

import (
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is a parsed corpus file: provenance metadata plus body text.
type Document struct {
	Title     string
	SourceURL string
	ScrapedAt time.Time
	Body      string
}

const frontmatterDelim = "---"

type frontmatter struct {
	Title     string `yaml:"title"`
	SourceURL string `yaml:"source_url"`
	ScrapedAt string `yaml:"scraped_at"`
}

// scrapedAtFormats are the timestamp layouts accepted in frontmatter.
var scrapedAtFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDocument parses optional YAML frontmatter (title, source_url,
// scraped_at) delimited by "---" lines at the top of content. Files without
// frontmatter are accepted: the whole content becomes the body and the title
// falls back to the file name without extension. A scraped_at value that
// cannot be parsed is left as the zero time.
func ParseDocument(content, path string) *Document {
	doc := &Document{Body: content}

	title, sourceURL, scrapedAt, body, ok := splitFrontmatter(content)
	if ok {
		doc.Title = title
		doc.SourceURL = sourceURL
		doc.Body = body
		for _, layout := range scrapedAtFormats {
			if t, err := time.Parse(layout, scrapedAt); err == nil {
				doc.ScrapedAt = t
				break
			}
		}
	}
	if doc.Title == "" {
		doc.Title = titleFromPath(path)
	}
	doc.Body = strings.TrimSpace(doc.Body)
	return doc
}

func splitFrontmatter(content string) (title, sourceURL, scrapedAt, body string, ok bool) {
	trimmed := strings.TrimLeft(content, "\uFEFF\n\r")
	if !strings.HasPrefix(trimmed, frontmatterDelim) {
		return "", "", "", "", false
	}
	rest := trimmed[len(frontmatterDelim):]
	rest = strings.TrimPrefix(rest, "\r")
	if !strings.HasPrefix(rest, "\n") {
		return "", "", "", "", false
	}
	rest = rest[1:]

	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return "", "", "", "", false
	}
	block := rest[:end]
	body = rest[end+1+len(frontmatterDelim):]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return "", "", "", "", false
	}
	return fm.Title, fm.SourceURL, fm.ScrapedAt, body, true
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(name)
}
