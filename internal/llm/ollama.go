package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// 默认Ollama服务地址
	defaultOllamaBaseURL = "http://localhost:11434"
)

// OllamaClient 实现Ollama聊天API客户端
type OllamaClient struct {
	baseURL     string       // 服务基础URL
	model       string       // 模型名称
	httpClient  *http.Client // HTTP客户端
	maxTokens   int          // 最大生成Token数
	temperature float32      // 采样温度
	topP        float32      // 核采样概率阈值
}

// NewOllamaClient 创建新的Ollama聊天客户端
func NewOllamaClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := cfg.Model
	if model == "" {
		model = ModelLlama32
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	return &OllamaClient{
		baseURL:     baseURL,
		model:       model,
		httpClient:  httpClient,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}, nil
}

// Name 返回模型名称
func (c *OllamaClient) Name() string {
	return c.model
}

// Generate 根据提示词生成回答
func (c *OllamaClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if prompt == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	messages := []Message{
		{Role: RoleUser, Content: prompt},
	}

	return c.chat(ctx, messages, opts.MaxTokens, opts.Temperature, opts.TopP)
}

// Chat 进行多轮对话
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error) {
	if len(messages) == 0 {
		return nil, NewLLMError(ErrCodeEmptyPrompt, "messages cannot be empty")
	}

	opts := &ChatOptions{}
	for _, opt := range options {
		opt(opts)
	}

	return c.chat(ctx, messages, opts.MaxTokens, opts.Temperature, opts.TopP)
}

// chat 发送聊天请求并解析响应
func (c *OllamaClient) chat(ctx context.Context, messages []Message, maxTokens *int, temperature *float32, topP *float32) (*Response, error) {
	reqData := OllamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options:  c.buildOptions(maxTokens, temperature, topP),
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/chat",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewLLMError(ErrCodeTimeout, ErrMsgTimeout)
		}
		return nil, NewLLMError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewLLMError(ErrCodeServerError, fmt.Sprintf("failed to read response: %v", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != "" {
			if httpResp.StatusCode == http.StatusNotFound {
				return nil, NewLLMError(ErrCodeModelNotFound, errResp.Error)
			}
			return nil, NewLLMError(ErrCodeServerError, errResp.Error)
		}
		return nil, NewLLMError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", httpResp.StatusCode, string(body)))
	}

	var resp OllamaChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewLLMError(ErrCodeServerError,
			fmt.Sprintf("failed to parse response: %v", err))
	}

	if resp.Error != "" {
		return nil, NewLLMError(ErrCodeServerError, fmt.Sprintf("ollama error: %s", resp.Error))
	}

	return &Response{
		Text:       resp.Message.Content,
		Messages:   append(messages, resp.Message),
		TokenCount: resp.PromptEvalCount + resp.EvalCount,
		ModelName:  resp.Model,
		FinishTime: time.Now(),
	}, nil
}

// buildOptions 合并客户端默认参数与请求级参数
func (c *OllamaClient) buildOptions(maxTokens *int, temperature *float32, topP *float32) *OllamaOptions {
	opts := &OllamaOptions{}

	if maxTokens != nil {
		opts.NumPredict = maxTokens
	} else if c.maxTokens > 0 {
		tokens := c.maxTokens
		opts.NumPredict = &tokens
	}

	if temperature != nil {
		opts.Temperature = temperature
	} else if c.temperature > 0 {
		temp := c.temperature
		opts.Temperature = &temp
	}

	if topP != nil {
		opts.TopP = topP
	} else if c.topP > 0 {
		p := c.topP
		opts.TopP = &p
	}

	return opts
}

// 注册Ollama客户端
func init() {
	RegisterClient("ollama", NewOllamaClient)
}
