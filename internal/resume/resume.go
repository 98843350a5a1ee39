package resume

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// ErrEmpty is returned when a résumé file has no readable text.
var ErrEmpty = errors.New("resume has no text")

var pdftotextBin = "pdftotext"

// ReadText returns the plain text of a résumé in .txt, .md, .docx or .pdf
// format. The result is valid UTF-8.
func ReadText(ctx context.Context, path string) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md", ".markdown":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	case ".docx":
		text, err = readDocx(path)
	case ".pdf":
		text, err = readPDF(ctx, path)
	default:
		return "", fmt.Errorf("unsupported resume format %q", ext)
	}
	if err != nil {
		return "", fmt.Errorf("read resume %s: %w", path, err)
	}

	text = strings.TrimPrefix(strings.ToValidUTF8(text, ""), "\ufeff")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmpty)
	}

	return text, nil
}

func readDocx(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return documentText(r.Editable().GetContent())
}

// documentText joins the text runs of a WordprocessingML body, one line per
// paragraph.
func documentText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}

func readPDF(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, pdftotextBin, "-layout", path, "-")
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("pdf support requires %s (poppler-utils): %w", pdftotextBin, err)
		}
		return "", fmt.Errorf("%s: %w: %s", pdftotextBin, err, strings.TrimSpace(stderr.String()))
	}

	return string(out), nil
}
