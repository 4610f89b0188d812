package llm

import "time"

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息结构
type Message struct {
	Role    MessageRole `json:"role"`    // 角色
	Content string      `json:"content"` // 内容
}

// OllamaChatRequest Ollama聊天请求结构
type OllamaChatRequest struct {
	Model    string         `json:"model"`             // 模型名称
	Messages []Message      `json:"messages"`          // 消息列表
	Stream   bool           `json:"stream"`            // 是否流式输出
	Options  *OllamaOptions `json:"options,omitempty"` // 可选生成参数
}

// OllamaOptions 生成参数
type OllamaOptions struct {
	Temperature *float32 `json:"temperature,omitempty"` // 采样温度
	TopP        *float32 `json:"top_p,omitempty"`       // 核采样概率阈值
	NumPredict  *int     `json:"num_predict,omitempty"` // 最大生成Token数
}

// OllamaChatResponse Ollama聊天响应结构
type OllamaChatResponse struct {
	Model     string  `json:"model"`           // 模型名称
	CreatedAt string  `json:"created_at"`      // 创建时间
	Message   Message `json:"message"`         // 回复消息
	Done      bool    `json:"done"`            // 是否完成
	Error     string  `json:"error,omitempty"` // 错误消息(如果有)

	PromptEvalCount int `json:"prompt_eval_count,omitempty"` // 输入token数
	EvalCount       int `json:"eval_count,omitempty"`        // 输出token数
}

// Response 统一的响应结构
type Response struct {
	Text       string    // 生成的文本
	Messages   []Message // 消息列表（如果是对话）
	TokenCount int       // 使用的token数
	ModelName  string    // 使用的模型名称
	FinishTime time.Time // 完成时间
}

// RAGResponse RAG响应结构
type RAGResponse struct {
	Answer  string   // 回答内容
	Sources []string // 引用来源文件名
}

// Model 常用模型名称
const (
	ModelLlama32 = "llama3.2" // Llama 3.2（默认本地模型）
	ModelLlama31 = "llama3.1" // Llama 3.1
	ModelQwen25  = "qwen2.5"  // 通义千问2.5本地版
	ModelMistral = "mistral"  // Mistral
)
