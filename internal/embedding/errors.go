package embedding

import "fmt"

// EmbeddingError 嵌入错误类型
type EmbeddingError struct {
	Code    int    // 错误码
	Message string // 错误消息
}

// Error 实现error接口
func (e EmbeddingError) Error() string {
	return fmt.Sprintf("embedding error (code=%d): %s", e.Code, e.Message)
}

// 错误码常量
const (
	ErrCodeInvalidRequest = 1001 // 无效的请求
	ErrCodeNetworkError   = 1002 // 网络连接错误
	ErrCodeServerError    = 1003 // 服务器错误
	ErrCodeTimeout        = 1004 // 请求超时
	ErrCodeEmptyInput     = 1005 // 输入为空
)

// 错误消息常量
const (
	ErrMsgInvalidRequest = "invalid request parameters"
	ErrMsgServerError    = "server error occurred"
	ErrMsgTimeout        = "request timed out"
	ErrMsgEmptyInput     = "input text cannot be empty"
	ErrMsgNetworkError   = "network connection error"
)

// NewEmbeddingError 创建新的嵌入错误
func NewEmbeddingError(code int, message string) EmbeddingError {
	return EmbeddingError{
		Code:    code,
		Message: message,
	}
}
