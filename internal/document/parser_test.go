package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		path string
		want ContentType
	}{
		{"manual.txt", PlainText},
		{"README.md", Markdown},
		{"notes.markdown", Markdown},
		{"report.pdf", PDF},
		{"REPORT.PDF", PDF},
		{"archive.tar.gz", Unknown},
		{"noextension", Unknown},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, detectContentType(c.path), "path %s", c.path)
	}
}

func TestParserFactory(t *testing.T) {
	t.Run("PlainText", func(t *testing.T) {
		p, err := ParserFactory("doc.txt")
		require.NoError(t, err)
		assert.IsType(t, &PlainTextParser{}, p)
	})

	t.Run("Markdown", func(t *testing.T) {
		p, err := ParserFactory("doc.md")
		require.NoError(t, err)
		assert.IsType(t, &MarkdownParser{}, p)
	})

	t.Run("PDF", func(t *testing.T) {
		p, err := ParserFactory("doc.pdf")
		require.NoError(t, err)
		assert.IsType(t, &PDFParser{}, p)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := ParserFactory("doc.docx")
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})
}

func TestPlainTextParseReader(t *testing.T) {
	parser := NewPlainTextParser()

	content, err := parser.ParseReader(strings.NewReader("hello world"), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", content)
}

func TestMarkdownParseReader(t *testing.T) {
	parser := NewMarkdownParser()

	md := "# Heading\n\nParagraph with **bold** text.\n\n- item one\n- item two"
	content, err := parser.ParseReader(strings.NewReader(md), "a.md")
	require.NoError(t, err)

	assert.Contains(t, content, "Heading")
	assert.Contains(t, content, "Paragraph with bold text.")
	assert.Contains(t, content, "item one")
	assert.NotContains(t, content, "<")
	assert.NotContains(t, content, "**")
}
