package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"paperaudit/internal/domain"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// localExtractor implements domain.ExtractionClient for the text-bearing
// formats that never need to reach the audit engine as raw bytes: plain
// text variants pass through, DOCX is unpacked locally. Binary formats
// (PDF, images) are not supported here; the controller routes those to the
// engine's document path.
type localExtractor struct{}

// NewLocalExtractor creates the local text extraction client.
func NewLocalExtractor() domain.ExtractionClient {
	return &localExtractor{}
}

func (e *localExtractor) Supports(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	return mimeType == docxMimeType
}

func (e *localExtractor) ExtractText(data []byte, mimeType string) (string, error) {
	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return string(data), nil
	case mimeType == docxMimeType:
		return extractDocx(data)
	default:
		return "", fmt.Errorf("unsupported mime type %s", mimeType)
	}
}

// extractDocx pulls the visible text out of word/document.xml. Runs (w:t)
// are concatenated; paragraphs (w:p) and tab marks become line breaks and
// tabs, matching how the text reads in the editor.
func extractDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening docx container: %w", err)
	}

	var document *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", errors.New("docx container has no word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("opening word/document.xml: %w", err)
	}
	defer rc.Close()

	return walkDocumentXML(rc)
}

func walkDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	var inText bool

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decoding word/document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
