package model

// AskRequest 问答请求
type AskRequest struct {
	Question string `json:"question"` // 用户问题
}
