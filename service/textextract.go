package service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Supported upload extensions.
const (
	ExtTXT  = ".txt"
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
)

var contentTypes = map[string]string{
	ExtTXT:  "text/plain; charset=utf-8",
	ExtPDF:  "application/pdf",
	ExtDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// NormalizeExtension returns the lower-cased extension of filename, or
// ErrUnsupportedFormat.
func NormalizeExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := contentTypes[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return ext, nil
}

func ContentType(ext string) string {
	return contentTypes[ext]
}

// ExtractLocalText extracts text from formats readable in-process. PDFs go
// through the remote extractor instead.
func ExtractLocalText(ext string, data []byte) (string, error) {
	switch ext {
	case ExtTXT:
		return decodeUTF8(data), nil
	case ExtDOCX:
		return extractDocx(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// decodeUTF8 drops invalid byte sequences and a leading BOM.
func decodeUTF8(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}

// extractDocx reads word/document.xml and returns one line per paragraph.
func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return wordParagraphs(rc)
	}
	return "", errors.New("docx has no word/document.xml")
}

// wordParagraphs walks WordprocessingML, joining w:t runs within a w:p and
// emitting w:tab and w:br as whitespace.
func wordParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, strings.TrimRight(current.String(), " \t"))
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	return strings.Join(paragraphs, "\n"), nil
}
