package resume

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Roe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Python, </w:t></w:r><w:r><w:t>AWS &amp; Docker</w:t></w:r></w:p>
    <w:p><w:r><w:t>5+ years</w:t><w:tab/><w:t>DevOps</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDocx(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "resume.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return path
}

func TestReadTextPlain(t *testing.T) {
	for _, name := range []string{"resume.txt", "resume.md", "RESUME.TXT"} {
		path := writeFile(t, name, "\ufeffPython developer\xff\n5 years")
		text, err := ReadText(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "Python developer\n5 years", text)
	}
}

func TestReadTextDocx(t *testing.T) {
	text, err := ReadText(context.Background(), writeDocx(t))
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe\nPython, AWS & Docker\n5+ years\tDevOps\n", text)
}

func TestDocumentText(t *testing.T) {
	text, err := documentText(documentXML)
	require.NoError(t, err)
	assert.Contains(t, text, "Python, AWS & Docker")

	_, err = documentText("<w:p><w:t>broken")
	require.Error(t, err)
}

func TestReadTextErrors(t *testing.T) {
	ctx := context.Background()

	_, err := ReadText(ctx, writeFile(t, "resume.rtf", "text"))
	require.ErrorContains(t, err, "unsupported")

	_, err = ReadText(ctx, filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadText(ctx, writeFile(t, "empty.txt", " \n\t"))
	require.ErrorIs(t, err, ErrEmpty)
}

func TestReadTextPDFWithoutTool(t *testing.T) {
	original := pdftotextBin
	pdftotextBin = "pdftotext-definitely-missing"
	defer func() { pdftotextBin = original }()

	_, err := ReadText(context.Background(), writeFile(t, "resume.pdf", "%PDF-1.4"))
	require.ErrorContains(t, err, "poppler-utils")

	_, err = ReadText(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
