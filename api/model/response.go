package model

// AskResponse 问答响应
type AskResponse struct {
	Answer  string   `json:"answer"`  // 生成的答案
	Sources []string `json:"sources"` // 引用的来源文件名
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"` // 错误描述
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"` // 服务状态
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}
