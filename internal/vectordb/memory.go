package vectordb

import (
	"fmt"
	"sync"
	"time"
)

// MemoryRepository 内存向量仓库实现
// 文档在启动时批量写入，此后只做并发读取
type MemoryRepository struct {
	mu           sync.RWMutex        // 读写锁，确保并发安全
	dimension    int                 // 向量维度
	distType     DistanceType        // 距离计算类型
	documents    map[string]Document // 文档存储，ID到文档的映射
	sourceToIDs  map[string][]string // 来源文件到文档ID的映射
	insertionIDs []string            // 文档ID按插入顺序排列
}

// NewMemoryRepository 创建内存向量仓库
func NewMemoryRepository(config Config) (Repository, error) {
	if config.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}

	distType := config.DistanceType
	if distType != Cosine && distType != DotProduct && distType != Euclidean {
		distType = Cosine // 默认使用余弦距离
	}

	return &MemoryRepository{
		dimension:   config.Dimension,
		distType:    distType,
		documents:   make(map[string]Document),
		sourceToIDs: make(map[string][]string),
	}, nil
}

// Add 添加单个文档到内存仓库
func (r *MemoryRepository) Add(doc Document) error {
	if err := ValidateVector(doc.Vector, r.dimension); err != nil {
		return err
	}

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]interface{})
	}

	// 对于余弦距离，先对向量进行归一化处理
	if r.distType == Cosine {
		doc.Vector = normalizeVector(doc.Vector)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.documents[doc.ID]; !exists {
		r.insertionIDs = append(r.insertionIDs, doc.ID)
		r.sourceToIDs[doc.Source] = append(r.sourceToIDs[doc.Source], doc.ID)
	}
	r.documents[doc.ID] = doc

	return nil
}

// AddBatch 批量添加文档到内存仓库
func (r *MemoryRepository) AddBatch(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	// 使用单个锁进行批处理，避免多次加解锁开销
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range docs {
		doc := docs[i]

		if err := ValidateVector(doc.Vector, r.dimension); err != nil {
			return fmt.Errorf("invalid vector for document %s: %v", doc.ID, err)
		}

		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now()
		}

		if doc.Metadata == nil {
			doc.Metadata = make(map[string]interface{})
		}

		if r.distType == Cosine {
			doc.Vector = normalizeVector(doc.Vector)
		}

		if _, exists := r.documents[doc.ID]; !exists {
			r.insertionIDs = append(r.insertionIDs, doc.ID)
			r.sourceToIDs[doc.Source] = append(r.sourceToIDs[doc.Source], doc.ID)
		}
		r.documents[doc.ID] = doc
	}

	return nil
}

// Get 获取单个文档
func (r *MemoryRepository) Get(id string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.documents[id]
	if !exists {
		return Document{}, ErrDocumentNotFound
	}

	return doc, nil
}

// Search 相似度搜索
// 全量扫描后按评分降序返回不超过MaxResults条结果
func (r *MemoryRepository) Search(vector []float32, filter SearchFilter) ([]SearchResult, error) {
	if err := ValidateVector(vector, r.dimension); err != nil {
		return nil, err
	}

	// 对于余弦距离，对查询向量进行归一化处理
	if r.distType == Cosine {
		vector = normalizeVector(vector)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]SearchResult, 0, len(r.insertionIDs))

	// 按插入顺序扫描，保证同分结果顺序稳定
	for _, id := range r.insertionIDs {
		doc := r.documents[id]

		if !matchSource(doc.Source, filter.Sources) {
			continue
		}
		if !matchMetadata(doc.Metadata, filter.Metadata) {
			continue
		}

		dist, err := ComputeDistance(vector, doc.Vector, r.distType)
		if err != nil {
			return nil, fmt.Errorf("error computing distance: %v", err)
		}

		score := DistanceToScore(dist, r.distType)
		if score < filter.MinScore {
			continue
		}

		results = append(results, SearchResult{
			Document: doc,
			Score:    score,
			Distance: dist,
		})
	}

	// 按得分排序（从高到低）
	SortSearchResults(results)

	if filter.MaxResults > 0 && len(results) > filter.MaxResults {
		results = results[:filter.MaxResults]
	}

	return results, nil
}

// Count 获取文档总数
func (r *MemoryRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.documents), nil
}

// GetDimension 返回向量维数
func (r *MemoryRepository) GetDimension() int {
	return r.dimension
}

// Close 关闭数据库连接
// 对于内存实现这是一个空操作
func (r *MemoryRepository) Close() error {
	return nil
}

// 在包初始化时注册内存仓库
func init() {
	RegisterRepository("memory", NewMemoryRepository)
}
