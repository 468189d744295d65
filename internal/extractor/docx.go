package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractDOCX pulls paragraph text out of a Word document, one paragraph per
// line. The docx library exposes the raw document XML, so paragraphs are
// recovered by splitting on w:p elements and stripping the remaining tags.
func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	xmlContent := r.Editable().GetContent()

	var paragraphs []string
	for _, block := range strings.Split(xmlContent, "</w:p>") {
		text := strings.TrimSpace(stripXMLTags(block))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

// stripXMLTags drops every <...> tag, keeping only character data.
func stripXMLTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
