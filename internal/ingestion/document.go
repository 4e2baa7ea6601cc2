// Package ingestion turns uploaded resume documents into normalized plain text.
package ingestion

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Kind identifies a supported document format.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindText    Kind = "text"
	KindUnknown Kind = ""
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var (
	docxParagraphEndRe = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTabRe          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTagRe           = regexp.MustCompile(`<[^>]+>`)
)

// DetectKind identifies the document format from its content, falling back to the file extension.
func DetectKind(filename string, data []byte) Kind {
	m := mimetype.Detect(data)
	switch {
	case m.Is("application/pdf"):
		return KindPDF
	case m.Is(docxMIME):
		return KindDOCX
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".txt", ".text", ".md":
		return KindText
	}

	if m.Is("text/plain") {
		return KindText
	}
	return KindUnknown
}

// Supported reports whether filename/data is a format Extract understands.
func Supported(filename string, data []byte) bool {
	return DetectKind(filename, data) != KindUnknown
}

// Extract returns the cleaned text of a document.
// PDF pages are separated by newlines.
func Extract(filename string, data []byte) (string, error) {
	var (
		raw string
		err error
	)

	switch kind := DetectKind(filename, data); kind {
	case KindPDF:
		raw, err = extractPDF(data)
	case KindDOCX:
		raw, err = extractDOCX(data)
	case KindText:
		raw = string(data)
	default:
		return "", fmt.Errorf("unsupported document type: %s", filename)
	}
	if err != nil {
		return "", err
	}

	return CleanText(raw), nil
}

// ExtractText is Extract with failures mapped to empty text.
func ExtractText(filename string, data []byte) string {
	text, err := Extract(filename, data)
	if err != nil {
		return ""
	}
	return text
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

// docxXMLToText flattens WordprocessingML to text with one paragraph per line.
func docxXMLToText(content string) string {
	content = docxParagraphEndRe.ReplaceAllString(content, "\n")
	content = docxTabRe.ReplaceAllString(content, " ")
	content = xmlTagRe.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}
