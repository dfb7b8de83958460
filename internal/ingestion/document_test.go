package ingestion

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocument_Text(t *testing.T) {
	text, err := ExtractDocument("job.txt", []byte("Senior   Go engineer\r\n\r\n\r\nKafka"))
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer\n\nKafka", text)
}

func TestExtractDocument_InvalidUTF8(t *testing.T) {
	_, err := ExtractDocument("job.txt", []byte{0xff, 0xfe, 0xfd})
	assert.Error(t, err)
}

func TestExtractDocument_Docx(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Skills</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Go &amp; PostgreSQL</w:t></w:r><w:r><w:tab/><w:t>Docker</w:t></w:r></w:p>`)

	text, err := ExtractDocument("resume.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Skills\nGo & PostgreSQL Docker", text)
}

func TestExtractDocument_CorruptFiles(t *testing.T) {
	_, err := ExtractDocument("resume.pdf", []byte("not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")

	_, err = ExtractDocument("resume.docx", []byte("not a zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docx")
}

func TestExtractDocument_Unsupported(t *testing.T) {
	_, err := ExtractDocument("resume.odt", []byte("x"))
	var formatErr *UnsupportedFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, ".odt", formatErr.Extension)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.md")
	require.NoError(t, os.WriteFile(path, []byte("# Backend Engineer\nNode and React"), 0644))

	text, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Backend Engineer\nNode and React", text)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestDocxXMLToText(t *testing.T) {
	xml := `<w:p><w:r><w:t>Line one</w:t></w:r><w:r><w:br/><w:t>Line two</w:t></w:r></w:p>`
	assert.Equal(t, "Line one\nLine two\n", docxXMLToText(xml))
}
