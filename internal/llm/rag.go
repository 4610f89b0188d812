package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultRAGTemplate 默认RAG提示词模板
// 包含变量：
// {{.Question}} - 用户问题
// {{.Context}} - 检索的上下文
const DefaultRAGTemplate = `You are a technical documentation assistant. Answer the question using only the reference context below.
If the context does not contain enough information to answer the question, say that you don't know instead of guessing or making things up.

Reference context:
{{.Context}}

Question: {{.Question}}

Answer the question directly without restating it.`

// formatContext 格式化上下文内容
func formatContext(contexts []string) string {
	var formattedContext strings.Builder
	for i, ctx := range contexts {
		formattedContext.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, ctx))
	}
	return formattedContext.String()
}

// RAGConfig 检索增强生成配置
type RAGConfig struct {
	Template    string  // 提示词模板
	MaxTokens   int     // 最大Token数
	Temperature float32 // 温度参数
}

// DefaultRAGConfig 默认RAG配置
func DefaultRAGConfig() *RAGConfig {
	return &RAGConfig{
		Template:    DefaultRAGTemplate,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// RAGService 实现检索增强生成服务
type RAGService struct {
	Client Client       // 大模型客户端
	config *RAGConfig   // 配置
	mu     sync.RWMutex // 配置互斥锁
}

// NewRAG 创建新的检索增强生成服务
func NewRAG(client Client, opts ...RAGOption) *RAGService {
	cfg := DefaultRAGConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &RAGService{
		Client: client,
		config: cfg,
	}
}

// RAGOption RAG配置选项函数类型
type RAGOption func(*RAGConfig)

// WithTemplate 设置提示词模板
func WithTemplate(template string) RAGOption {
	return func(c *RAGConfig) {
		c.Template = template
	}
}

// WithRAGMaxTokens 设置最大Token数
func WithRAGMaxTokens(tokens int) RAGOption {
	return func(c *RAGConfig) {
		c.MaxTokens = tokens
	}
}

// WithRAGTemperature 设置温度参数
func WithRAGTemperature(temp float32) RAGOption {
	return func(c *RAGConfig) {
		c.Temperature = temp
	}
}

// Answer 根据上下文和问题生成回答
// 生成失败时错误原样向上传递，不做重试
func (r *RAGService) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	if question == "" {
		return "", NewLLMError(ErrCodeEmptyPrompt, "question cannot be empty")
	}

	r.mu.RLock()
	cfg := r.config
	r.mu.RUnlock()

	prompt := r.buildPrompt(question, contexts)

	response, err := r.Client.Generate(
		ctx,
		prompt,
		WithGenerateMaxTokens(cfg.MaxTokens),
		WithGenerateTemperature(cfg.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %v", err)
	}

	return response.Text, nil
}

// buildPrompt 构建增强提示词
func (r *RAGService) buildPrompt(question string, contexts []string) string {
	r.mu.RLock()
	template := r.config.Template
	r.mu.RUnlock()

	formattedContext := formatContext(contexts)

	// 简单的模板替换
	prompt := template
	prompt = strings.ReplaceAll(prompt, "{{.Context}}", formattedContext)
	prompt = strings.ReplaceAll(prompt, "{{.Question}}", question)

	return prompt
}

// SetTemplate 设置自定义提示词模板
func (r *RAGService) SetTemplate(template string) *RAGService {
	r.mu.Lock()
	r.config.Template = template
	r.mu.Unlock()
	return r
}
