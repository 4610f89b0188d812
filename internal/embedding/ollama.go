package embedding

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
)

const (
	// 默认Ollama服务地址
	defaultOllamaBaseURL = "http://localhost:11434"

	// 默认嵌入模型
	defaultOllamaModel = "nomic-embed-text"
)

// ollamaEmbedRequest Ollama嵌入请求结构体
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse Ollama嵌入响应结构体
type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// OllamaClient 实现Ollama嵌入API客户端
type OllamaClient struct {
	baseURL    string       // 服务基础URL
	model      string       // 模型名称
	httpClient *http.Client // HTTP客户端
	dimensions int          // 向量维度
}

// NewOllamaClient 创建新的Ollama嵌入客户端
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
		model = defaultOllamaModel
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	return &OllamaClient{
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		dimensions: cfg.Dimensions,
	}, nil
}

// Name 返回模型名称
func (c *OllamaClient) Name() string {
	return c.model
}

// Embed 生成单条文本的向量表示
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, NewEmbeddingError(ErrCodeEmptyInput, ErrMsgEmptyInput)
	}

	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 {
		return nil, NewEmbeddingError(ErrCodeServerError, "no embedding vectors returned")
	}

	return vectors[0], nil
}

// EmbedBatch 批量生成文本的向量表示
// 返回的向量与输入文本顺序一一对应
func (c *OllamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	for _, text := range texts {
		if text == "" {
			return nil, NewEmbeddingError(ErrCodeEmptyInput, ErrMsgEmptyInput)
		}
	}

	reqData := ollamaEmbedRequest{
		Model: c.model,
		Input: texts,
	}

	var resp ollamaEmbedResponse
	if err := c.sendRequest(ctx, "/api/embed", reqData, &resp); err != nil {
		return nil, err
	}

	if resp.Error != "" {
		return nil, NewEmbeddingError(ErrCodeServerError,
			fmt.Sprintf("ollama error: %s", resp.Error))
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, NewEmbeddingError(ErrCodeServerError,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings)))
	}

	return resp.Embeddings, nil
}

// sendRequest 发送API请求并解析响应
func (c *OllamaClient) sendRequest(ctx context.Context, path string, reqData interface{}, respObj interface{}) error {
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewEmbeddingError(ErrCodeTimeout, ErrMsgTimeout)
		}
		return NewEmbeddingError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewEmbeddingError(ErrCodeServerError, fmt.Sprintf("failed to read response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != "" {
			return NewEmbeddingError(ErrCodeServerError, errResp.Error)
		}
		return NewEmbeddingError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	if err := json.Unmarshal(body, respObj); err != nil {
		return NewEmbeddingError(ErrCodeServerError,
			fmt.Sprintf("failed to parse response: %v", err))
	}

	return nil
}

// 注册Ollama客户端
func init() {
	RegisterClient("ollama", NewOllamaClient)
}
