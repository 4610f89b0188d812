package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/techdoc-assistant/internal/document"
	"github.com/fyerfyer/techdoc-assistant/internal/embedding"
	"github.com/fyerfyer/techdoc-assistant/internal/vectordb"
)

// fakeIndexEmbedder 批量嵌入的测试替身，向量维度固定为2
type fakeIndexEmbedder struct {
	fail bool
}

func (f *fakeIndexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeIndexEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, assert.AnError
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, nil
}

func (f *fakeIndexEmbedder) Name() string { return "fake" }

func newIndexService(t *testing.T, dir string, client embedding.Client) (*IndexService, vectordb.Repository) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	splitter, err := document.NewTextSplitter(document.SplitterConfig{ChunkSize: 20, ChunkOverlap: 5})
	require.NoError(t, err)

	repo, err := vectordb.NewMemoryRepository(vectordb.Config{Dimension: 2})
	require.NoError(t, err)

	svc := NewIndexService(
		document.NewLoader(dir, logger),
		splitter,
		embedding.NewBatchProcessor(client, 4, 2),
		repo,
		logger,
	)
	return svc, repo
}

func TestIndexServiceBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "long.txt"),
		[]byte(strings.Repeat("x", 50)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "short.txt"),
		[]byte("tiny"), 0o644))

	svc, repo := newIndexService(t, dir, &fakeIndexEmbedder{})

	require.NoError(t, svc.Build(context.Background()))

	// 50字符、窗口20步长15 → 3块；4字符 → 1块
	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestIndexServiceBuildEmptyDirectory(t *testing.T) {
	svc, _ := newIndexService(t, t.TempDir(), &fakeIndexEmbedder{})

	err := svc.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no indexable documents")
}

func TestIndexServiceBuildEmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("content"), 0o644))

	svc, _ := newIndexService(t, dir, &fakeIndexEmbedder{fail: true})

	err := svc.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate embeddings")
}

func TestClearIndexStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.bin"), []byte("old"), 0o644))

	require.NoError(t, ClearIndexStorage(dir))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// 路径不存在时也不报错
	assert.NoError(t, ClearIndexStorage(dir))

	// 空路径是空操作
	assert.NoError(t, ClearIndexStorage(""))
}
