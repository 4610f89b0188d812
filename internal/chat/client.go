package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fyerfyer/techdoc-assistant/api/model"
)

// 默认请求超时，生成长答案时后端可能响应较慢
const DefaultTimeout = 120 * time.Second

// ErrorKind 客户端错误分类
type ErrorKind string

const (
	// KindConnection 无法连接到后端
	KindConnection ErrorKind = "connection"
	// KindTimeout 请求超时
	KindTimeout ErrorKind = "timeout"
	// KindBadResponse 响应格式不合法
	KindBadResponse ErrorKind = "bad_response"
	// KindRequestFailed 后端返回错误或其他请求失败
	KindRequestFailed ErrorKind = "request_failed"
)

// ClientError 带分类的客户端错误
// 每个分类在聊天界面渲染为不同的提示消息
type ClientError struct {
	Kind    ErrorKind // 错误分类
	Message string    // 错误描述
}

// Error 实现error接口
func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// UserMessage 返回适合展示在聊天界面的提示文案
func (e *ClientError) UserMessage() string {
	switch e.Kind {
	case KindConnection:
		return "Could not connect to the backend. Is the server running?"
	case KindTimeout:
		return "The request timed out. The model may be taking too long to answer."
	case KindBadResponse:
		return "Received an invalid response from the backend."
	default:
		return "Request failed: " + e.Message
	}
}

// Client 后端问答服务客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建后端客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ask 向后端提问并返回答案与来源
func (c *Client) Ask(ctx context.Context, question string) (*model.AskResponse, error) {
	reqBody, err := json.Marshal(model.AskRequest{Question: question})
	if err != nil {
		return nil, &ClientError{Kind: KindRequestFailed, Message: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/ask", bytes.NewReader(reqBody))
	if err != nil {
		return nil, &ClientError{Kind: KindRequestFailed, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Kind: KindBadResponse, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp model.ErrorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != "" {
			return nil, &ClientError{Kind: KindRequestFailed, Message: errResp.Error}
		}
		return nil, &ClientError{Kind: KindRequestFailed,
			Message: fmt.Sprintf("backend returned status %d", resp.StatusCode)}
	}

	var askResp model.AskResponse
	if err := json.Unmarshal(body, &askResp); err != nil {
		return nil, &ClientError{Kind: KindBadResponse, Message: fmt.Sprintf("failed to parse response: %v", err)}
	}

	return &askResp, nil
}

// Health 检查后端是否可用
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return &ClientError{Kind: KindRequestFailed, Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{Kind: KindRequestFailed,
			Message: fmt.Sprintf("health check returned status %d", resp.StatusCode)}
	}
	return nil
}

// classifyTransportError 将传输层错误归入客户端错误分类
func classifyTransportError(err error) *ClientError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Kind: KindTimeout, Message: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Kind: KindTimeout, Message: err.Error()}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &ClientError{Kind: KindConnection, Message: err.Error()}
	}
	if errors.Is(err, io.EOF) {
		return &ClientError{Kind: KindConnection, Message: err.Error()}
	}

	return &ClientError{Kind: KindRequestFailed, Message: err.Error()}
}
