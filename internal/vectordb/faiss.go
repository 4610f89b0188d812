package vectordb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/DataIntelligenceCrew/go-faiss"
)

// FaissRepository 实现基于Faiss的向量仓库
// 索引本体由Faiss持久化，文档元数据保存在同路径的JSON侧文件中
type FaissRepository struct {
	mu           sync.RWMutex
	index        faiss.Index
	documents    map[string]Document
	sourceToIDs  map[string][]string
	idToPosition map[string]int
	positionToID map[int]string
	indexPath    string
	metaPath     string
	dimension    int
	distanceType DistanceType
	saveOnClose  bool
}

// NewFaissRepository 创建新的Faiss向量仓库
func NewFaissRepository(config Config) (Repository, error) {
	if config.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}

	if config.Path != "" && !config.InMemory {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %v", err)
		}
	}

	distType := config.DistanceType
	if distType == "" {
		distType = Cosine
	}

	indexPath := config.Path
	metaPath := ""
	if indexPath != "" {
		metaPath = indexPath + ".meta.json"
	}

	repo := &FaissRepository{
		documents:    make(map[string]Document),
		sourceToIDs:  make(map[string][]string),
		idToPosition: make(map[string]int),
		positionToID: make(map[int]string),
		indexPath:    indexPath,
		metaPath:     metaPath,
		dimension:    config.Dimension,
		distanceType: distType,
		saveOnClose:  true,
	}

	index, err := createFaissIndex(config.Dimension, distType)
	if err != nil {
		return nil, fmt.Errorf("failed to create Faiss index: %v", err)
	}

	repo.index = index
	return repo, nil
}

// createFaissIndex 创建Faiss索引
func createFaissIndex(dimension int, distType DistanceType) (faiss.Index, error) {
	var metric int
	switch distType {
	case Cosine, DotProduct:
		metric = faiss.MetricInnerProduct
	case Euclidean:
		metric = faiss.MetricL2
	default:
		metric = faiss.MetricL2
	}
	return faiss.NewIndexFlat(dimension, metric)
}

// Add 添加单个文档到仓库
func (r *FaissRepository) Add(doc Document) error {
	if err := ValidateVector(doc.Vector, r.dimension); err != nil {
		return err
	}
	if r.distanceType == Cosine {
		doc.Vector = normalizeVector(doc.Vector)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]interface{})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nextPos := int(r.index.Ntotal())
	if err := r.index.Add(doc.Vector); err != nil {
		return fmt.Errorf("failed to add vector to index: %v", err)
	}

	r.documents[doc.ID] = doc
	r.idToPosition[doc.ID] = nextPos
	r.positionToID[nextPos] = doc.ID
	r.sourceToIDs[doc.Source] = append(r.sourceToIDs[doc.Source], doc.ID)

	return nil
}

// AddBatch 批量添加文档到仓库
func (r *FaissRepository) AddBatch(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	for i := range docs {
		if err := ValidateVector(docs[i].Vector, r.dimension); err != nil {
			return fmt.Errorf("invalid vector for document %s: %v", docs[i].ID, err)
		}
		if r.distanceType == Cosine {
			docs[i].Vector = normalizeVector(docs[i].Vector)
		}
		if docs[i].CreatedAt.IsZero() {
			docs[i].CreatedAt = time.Now()
		}
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]interface{})
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	startPos := int(r.index.Ntotal())
	for _, doc := range docs {
		if err := r.index.Add(doc.Vector); err != nil {
			return fmt.Errorf("failed to add vector to index: %v", err)
		}
	}

	for i, doc := range docs {
		position := startPos + i
		r.documents[doc.ID] = doc
		r.idToPosition[doc.ID] = position
		r.positionToID[position] = doc.ID
		r.sourceToIDs[doc.Source] = append(r.sourceToIDs[doc.Source], doc.ID)
	}

	return nil
}

// Get 获取单个文档
func (r *FaissRepository) Get(id string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, exists := r.documents[id]
	if !exists {
		return Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

// Search 相似度搜索
func (r *FaissRepository) Search(vector []float32, filter SearchFilter) ([]SearchResult, error) {
	if err := ValidateVector(vector, r.dimension); err != nil {
		return nil, err
	}
	if r.distanceType == Cosine {
		vector = normalizeVector(vector)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.documents) == 0 {
		return []SearchResult{}, nil
	}

	k := filter.MaxResults
	if k <= 0 {
		k = 10
	}

	// 超额检索，给来源和元数据过滤留余量
	queryLimit := k * 2
	total := int(r.index.Ntotal())
	if queryLimit > total {
		queryLimit = total
	}
	if queryLimit == 0 {
		return []SearchResult{}, nil
	}

	distances, indices, err := r.index.Search(vector, int64(queryLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %v", err)
	}

	var results []SearchResult
	for i := 0; i < len(indices); i++ {
		idx := indices[i]
		if idx < 0 {
			continue
		}

		docID, found := r.positionToID[int(idx)]
		if !found {
			continue
		}
		doc, exists := r.documents[docID]
		if !exists {
			continue
		}

		if !matchSource(doc.Source, filter.Sources) {
			continue
		}
		if !matchMetadata(doc.Metadata, filter.Metadata) {
			continue
		}

		// 内积度量下Faiss返回的"距离"即相似度，先转换为统一的距离语义
		dist := distances[i]
		if r.distanceType == Cosine {
			dist = 1 - dist
		}
		score := DistanceToScore(dist, r.distanceType)
		if score < filter.MinScore {
			continue
		}

		results = append(results, SearchResult{
			Document: doc,
			Score:    score,
			Distance: dist,
		})
		if len(results) >= k {
			break
		}
	}

	SortSearchResults(results)
	return results, nil
}

// Count 获取文档总数
func (r *FaissRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.documents), nil
}

// GetDimension 返回向量维数
func (r *FaissRepository) GetDimension() int {
	return r.dimension
}

// Close 关闭仓库
func (r *FaissRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveOnClose && r.indexPath != "" {
		if err := r.saveIndex(); err != nil {
			return fmt.Errorf("failed to save index on close: %v", err)
		}
	}
	return nil
}

// saveIndex 保存索引和文档数据到文件
func (r *FaissRepository) saveIndex() error {
	if r.indexPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.indexPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}
	if err := faiss.WriteIndex(r.index, r.indexPath); err != nil {
		return fmt.Errorf("failed to write index to file: %v", err)
	}
	return r.saveMetadata()
}

// faissMetadata 侧文件结构
type faissMetadata struct {
	Documents    map[string]Document `json:"documents"`
	SourceToIDs  map[string][]string `json:"source_to_ids"`
	IDToPosition map[string]int      `json:"id_to_position"`
}

// saveMetadata 保存文档元数据到文件
func (r *FaissRepository) saveMetadata() error {
	if r.metaPath == "" {
		return nil
	}
	metadata := faissMetadata{
		Documents:    r.documents,
		SourceToIDs:  r.sourceToIDs,
		IDToPosition: r.idToPosition,
	}
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %v", err)
	}
	if err := os.WriteFile(r.metaPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata file: %v", err)
	}
	return nil
}

func init() {
	RegisterRepository("faiss", NewFaissRepository)
}
