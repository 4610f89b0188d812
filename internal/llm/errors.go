package llm

import "fmt"

// LLMError 大模型调用错误类型
type LLMError struct {
	Code    int    // 错误码
	Message string // 错误消息
}

// Error 实现error接口
func (e LLMError) Error() string {
	return fmt.Sprintf("llm error (code=%d): %s", e.Code, e.Message)
}

// 错误码常量
const (
	ErrCodeInvalidRequest = 1001 // 无效的请求
	ErrCodeNetworkError   = 1002 // 网络连接错误
	ErrCodeServerError    = 1003 // 服务器错误
	ErrCodeTimeout        = 1004 // 请求超时
	ErrCodeEmptyPrompt    = 1005 // 提示词为空
	ErrCodeModelNotFound  = 1006 // 模型不存在
)

// 错误消息常量
const (
	ErrMsgInvalidRequest = "invalid request parameters"
	ErrMsgServerError    = "server error occurred"
	ErrMsgTimeout        = "request timed out"
	ErrMsgEmptyPrompt    = "prompt cannot be empty"
	ErrMsgNetworkError   = "network connection error"
	ErrMsgModelNotFound  = "model not found"
)

// NewLLMError 创建新的大模型错误
func NewLLMError(code int, message string) LLMError {
	return LLMError{
		Code:    code,
		Message: message,
	}
}

// WrapError 包装普通错误为LLM错误
func WrapError(err error, code int) LLMError {
	if err == nil {
		return LLMError{Code: code, Message: "unknown error"}
	}

	if llmErr, ok := err.(LLMError); ok {
		return llmErr
	}

	return LLMError{
		Code:    code,
		Message: err.Error(),
	}
}
