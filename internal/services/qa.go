package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fyerfyer/techdoc-assistant/internal/cache"
	"github.com/fyerfyer/techdoc-assistant/internal/embedding"
	"github.com/fyerfyer/techdoc-assistant/internal/llm"
	"github.com/fyerfyer/techdoc-assistant/internal/vectordb"
)

// ErrEmptyQuestion 问题为空或只含空白字符
var ErrEmptyQuestion = errors.New("question cannot be empty")

// NoContextAnswer 没有检索到足够相关内容时的固定回答
const NoContextAnswer = "Sorry, I couldn't find any relevant information to answer your question."

// QAService 问答服务
// 负责协调向量检索和大模型生成答案
type QAService struct {
	embedder    embedding.Client    // 嵌入模型客户端
	vectorDB    vectordb.Repository // 向量数据库
	rag         *llm.RAGService     // RAG服务
	cache       cache.Cache         // 答案缓存，可为nil
	cacheTTL    time.Duration       // 缓存有效期
	searchLimit int                 // 检索结果数量限制
	minScore    float32             // 最低相似度分数
}

// QAOption 问答服务配置选项
type QAOption func(*QAService)

// NewQAService 创建问答服务实例
func NewQAService(
	embedder embedding.Client,
	vectorDB vectordb.Repository,
	rag *llm.RAGService,
	opts ...QAOption,
) *QAService {
	service := &QAService{
		embedder:    embedder,
		vectorDB:    vectorDB,
		rag:         rag,
		cacheTTL:    time.Hour, // 默认缓存1小时
		searchLimit: 5,         // 默认检索5个相关分块
		minScore:    0,         // 默认不做相似度过滤
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WithCache 启用答案缓存
func WithCache(c cache.Cache) QAOption {
	return func(s *QAService) {
		s.cache = c
	}
}

// WithCacheTTL 设置缓存时间
func WithCacheTTL(ttl time.Duration) QAOption {
	return func(s *QAService) {
		s.cacheTTL = ttl
	}
}

// WithSearchLimit 设置检索结果数量
func WithSearchLimit(limit int) QAOption {
	return func(s *QAService) {
		if limit > 0 {
			s.searchLimit = limit
		}
	}
}

// WithMinScore 设置最低相似度分数
func WithMinScore(score float32) QAOption {
	return func(s *QAService) {
		s.minScore = score
	}
}

// cachedAnswer 缓存中的答案条目
type cachedAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Answer 回答问题
// 返回答案和按首次出现顺序去重的来源文件名列表
func (s *QAService) Answer(ctx context.Context, question string) (string, []string, error) {
	// 空白问题直接拒绝，不会到达嵌入服务
	if strings.TrimSpace(question) == "" {
		return "", nil, ErrEmptyQuestion
	}

	// 1. 尝试从缓存获取
	cacheKey := cache.QuestionKey(question)
	if s.cache != nil {
		if value, found, err := s.cache.Get(cacheKey); err == nil && found {
			var entry cachedAnswer
			if err := json.Unmarshal([]byte(value), &entry); err == nil {
				return entry.Answer, entry.Sources, nil
			}
		}
	}

	// 2. 将问题转换为向量
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	// 3. 检索相关分块
	filter := vectordb.SearchFilter{
		MinScore:   s.minScore,
		MaxResults: s.searchLimit,
	}
	results, err := s.vectorDB.Search(vector, filter)
	if err != nil {
		return "", nil, fmt.Errorf("search failed: %w", err)
	}

	// 没有检索到任何分块时返回固定回答
	if len(results) == 0 {
		s.cacheResult(cacheKey, NoContextAnswer, nil)
		return NoContextAnswer, nil, nil
	}

	// 4. 提取上下文文本和去重后的来源
	contexts := make([]string, len(results))
	for i, result := range results {
		contexts[i] = result.Document.Text
	}
	sources := distinctSources(results)

	// 5. 使用RAG生成回答，失败不缓存、不重试
	answer, err := s.rag.Answer(ctx, question, contexts)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	// 6. 缓存结果
	s.cacheResult(cacheKey, answer, sources)

	return answer, sources, nil
}

// cacheResult 将成功的答案写入缓存
func (s *QAService) cacheResult(key string, answer string, sources []string) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(cachedAnswer{Answer: answer, Sources: sources})
	if err != nil {
		return
	}
	// 缓存写入失败不影响主流程
	_ = s.cache.Set(key, string(data), s.cacheTTL)
}

// distinctSources 提取检索结果的来源文件名，按首次出现顺序去重
func distinctSources(results []vectordb.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	sources := make([]string, 0, len(results))
	for _, result := range results {
		source := result.Document.Source
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true
		sources = append(sources, source)
	}
	return sources
}

// ClearCache 清除问答缓存
func (s *QAService) ClearCache() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear()
}
