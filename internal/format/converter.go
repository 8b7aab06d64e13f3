// Package format turns HTML message bodies into text a chat reply can show.
package format

import (
	"fmt"
	"log"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Converter handles HTML to text conversion.
type Converter struct{}

// HTML2Text converts HTML to Markdown, falling back to plain text extraction
// when the Markdown converter rejects the document.
func (c Converter) HTML2Text(raw []byte) (string, error) {
	md, err := htmltomarkdown.ConvertString(string(raw))
	if err == nil && strings.TrimSpace(md) != "" {
		return collapseBlankLines(md), nil
	}
	if err != nil {
		log.Println(fmt.Errorf("htmltomarkdown.ConvertString failed: %w", err))
	}

	text, err := PlainText(raw)
	if err != nil {
		return "", fmt.Errorf("PlainText failed: %w", err)
	}

	return text, nil
}

func collapseBlankLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
