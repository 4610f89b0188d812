package document

import (
	"fmt"
)

// SplitterConfig 分段器配置
type SplitterConfig struct {
	ChunkSize    int // 窗口大小（按字符数）
	ChunkOverlap int // 相邻窗口重叠大小（字符数）
}

// DefaultSplitterConfig 返回默认分段器配置
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		ChunkSize:    500,
		ChunkOverlap: 50,
	}
}

// TextSplitter 固定窗口文本分段器
// 从文本起点开始取ChunkSize个字符的窗口，每次前进ChunkSize-ChunkOverlap，
// 直到覆盖全文。字符按rune计数。
type TextSplitter struct {
	config SplitterConfig
}

// NewTextSplitter 创建新的文本分段器
// 要求ChunkOverlap小于ChunkSize，否则窗口无法前进
func NewTextSplitter(config SplitterConfig) (*TextSplitter, error) {
	if config.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}
	if config.ChunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", config.ChunkOverlap)
	}
	if config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			config.ChunkOverlap, config.ChunkSize)
	}

	return &TextSplitter{config: config}, nil
}

// Split 将单条记录切分为窗口分块
// 空内容返回空切片；每个分块继承记录的来源标签并带窗口序号
func (s *TextSplitter) Split(record Record) []Chunk {
	runes := []rune(record.Content)
	if len(runes) == 0 {
		return []Chunk{}
	}

	step := s.config.ChunkSize - s.config.ChunkOverlap

	var chunks []Chunk
	for start, pos := 0, 0; start < len(runes); start, pos = start+step, pos+1 {
		end := start + s.config.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, Chunk{
			Text:     string(runes[start:end]),
			Source:   record.Source,
			Position: pos,
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// SplitRecords 切分一组记录并保持输入顺序
func (s *TextSplitter) SplitRecords(records []Record) []Chunk {
	var chunks []Chunk
	for _, record := range records {
		chunks = append(chunks, s.Split(record)...)
	}
	return chunks
}
