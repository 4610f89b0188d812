package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/techdoc-assistant/internal/document"
	"github.com/fyerfyer/techdoc-assistant/internal/embedding"
	"github.com/fyerfyer/techdoc-assistant/internal/vectordb"
)

// IndexService 索引构建服务
// 在服务启动时一次性完成文档加载、切分、嵌入和索引写入
type IndexService struct {
	loader    *document.Loader          // 文档加载器
	splitter  *document.TextSplitter    // 文本分段器
	processor *embedding.BatchProcessor // 嵌入批处理器
	repo      vectordb.Repository       // 向量仓库
	logger    *logrus.Logger            // 日志记录器
}

// NewIndexService 创建索引构建服务
func NewIndexService(
	loader *document.Loader,
	splitter *document.TextSplitter,
	processor *embedding.BatchProcessor,
	repo vectordb.Repository,
	logger *logrus.Logger,
) *IndexService {
	if logger == nil {
		logger = logrus.New()
	}
	return &IndexService{
		loader:    loader,
		splitter:  splitter,
		processor: processor,
		repo:      repo,
		logger:    logger,
	}
}

// ClearIndexStorage 销毁索引存储位置
// 在每次启动重建索引前调用，删除失败视为致命错误
func ClearIndexStorage(path string) error {
	if path == "" {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to clear index storage %s: %v", path, err)
	}
	return nil
}

// Build 构建向量索引
// 加载的文档集为空时返回错误，由调用方决定是否终止进程
func (s *IndexService) Build(ctx context.Context) error {
	records, err := s.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load documents: %v", err)
	}

	if len(records) == 0 {
		return fmt.Errorf("no indexable documents found, add documents and restart")
	}

	chunks := s.splitter.SplitRecords(records)
	if len(chunks) == 0 {
		return fmt.Errorf("documents produced no chunks")
	}

	s.logger.WithFields(logrus.Fields{
		"documents": len(records),
		"chunks":    len(chunks),
	}).Info("chunking complete, generating embeddings")

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.processor.Process(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %v", err)
	}

	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	docs := make([]vectordb.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = vectordb.Document{
			ID:       uuid.New().String(),
			Source:   chunk.Source,
			Position: chunk.Position,
			Text:     chunk.Text,
			Vector:   vectors[i],
		}
	}

	if err := s.repo.AddBatch(docs); err != nil {
		return fmt.Errorf("failed to add documents to index: %v", err)
	}

	count, err := s.repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count indexed documents: %v", err)
	}

	s.logger.WithField("indexed", count).Info("vector index built")
	return nil
}
