package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	require.NoError(t, err)
}

func TestLoadMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not-yet-created")

	loader := NewLoader(dir, newTestLogger())
	records, err := loader.Load()

	require.NoError(t, err)
	assert.Empty(t, records)

	// 目录应被自动创建
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadEmptyDirectory(t *testing.T) {
	loader := NewLoader(t.TempDir(), newTestLogger())
	records, err := loader.Load()

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "guide.txt", "installation guide content")
	writeTestFile(t, dir, "faq.txt", "frequently asked questions")

	loader := NewLoader(dir, newTestLogger())
	records, err := loader.Load()

	require.NoError(t, err)
	require.Len(t, records, 2)

	bySource := make(map[string]string)
	for _, r := range records {
		bySource[r.Source] = r.Content
	}
	assert.Equal(t, "installation guide content", bySource["guide.txt"])
	assert.Equal(t, "frequently asked questions", bySource["faq.txt"])
}

func TestLoadSkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "doc.txt", "supported content")
	writeTestFile(t, dir, "image.png", "binary-ish")
	writeTestFile(t, dir, "notes.log", "log output")

	loader := NewLoader(dir, newTestLogger())
	records, err := loader.Load()

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "doc.txt", records[0].Source)
}

func TestLoadSkipsUnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}

	dir := t.TempDir()
	writeTestFile(t, dir, "good.txt", "readable content")
	writeTestFile(t, dir, "bad.txt", "unreadable content")
	require.NoError(t, os.Chmod(filepath.Join(dir, "bad.txt"), 0o000))

	loader := NewLoader(dir, newTestLogger())
	records, err := loader.Load()

	// 不可读文件被跳过，其余文件正常加载
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good.txt", records[0].Source)
}

func TestLoadSkipsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "good.txt", "valid text")
	err := os.WriteFile(filepath.Join(dir, "broken.txt"), []byte{0xff, 0xfe, 0x41}, 0o644)
	require.NoError(t, err)

	loader := NewLoader(dir, newTestLogger())
	records, err := loader.Load()

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good.txt", records[0].Source)
}

func TestLoadMarkdownFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "readme.md", "# Title\n\nSome paragraph text.")

	loader := NewLoader(dir, newTestLogger())
	records, err := loader.Load()

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "readme.md", records[0].Source)
	assert.Contains(t, records[0].Content, "Title")
	assert.Contains(t, records[0].Content, "Some paragraph text.")
}

func TestLoadSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.txt"), 0o755))
	writeTestFile(t, dir, "flat.txt", "flat content")

	loader := NewLoader(dir, newTestLogger())
	records, err := loader.Load()

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "flat.txt", records[0].Source)
}
