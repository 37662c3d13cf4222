package docext

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"go-whatscv-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.docx")
	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	assert.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	assert.NoError(t, err)
	assert.NoError(t, zw.Close())
	return path
}

func TestExtractDocx(t *testing.T) {
	t.Run("Joins paragraphs with newlines", func(t *testing.T) {
		path := writeDocx(t, `<?xml version="1.0"?>
			<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
				<w:body>
					<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
					<w:p><w:r><w:t>Software Engineer at </w:t></w:r><w:r><w:t>Acme</w:t></w:r></w:p>
					<w:p></w:p>
				</w:body>
			</w:document>`)

		e := NewExtractor()
		assert.Equal(t, "Jane Doe\nSoftware Engineer at Acme", e.Extract(path))
	})

	t.Run("Corrupt archive yields empty string, no error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.docx")
		assert.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

		e := NewExtractor()
		assert.Equal(t, "", e.Extract(path))
	})
}

func TestExtractUnsupported(t *testing.T) {
	e := NewExtractor()
	assert.Equal(t, "", e.Extract("cv.txt"))
	assert.Equal(t, "", e.Extract("missing.pdf"))
}

func TestTextFromContentStream(t *testing.T) {
	t.Run("Tj and TJ operators", func(t *testing.T) {
		stream := []byte("BT\n(Hello) Tj\n0 -14 Td\n[(Wor) -250 (ld)] TJ\nET")
		assert.Equal(t, "Hello World", textFromContentStream(stream))
	})

	t.Run("Escape sequences decode", func(t *testing.T) {
		stream := []byte("(a\\(b\\)c\\040d) Tj")
		assert.Equal(t, "a(b)c d", textFromContentStream(stream))
	})
}
