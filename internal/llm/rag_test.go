package llm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenClient 记录收到的提示词并返回固定回答
type fakeGenClient struct {
	lastPrompt string
	answer     string
	fail       bool
}

func (f *fakeGenClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	f.lastPrompt = prompt
	if f.fail {
		return nil, NewLLMError(ErrCodeServerError, "generation failed")
	}
	return &Response{
		Text:       f.answer,
		ModelName:  "fake",
		FinishTime: time.Now(),
	}, nil
}

func (f *fakeGenClient) Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeGenClient) Name() string { return "fake" }

func TestRAGAnswer(t *testing.T) {
	client := &fakeGenClient{answer: "pointers hold memory addresses"}
	rag := NewRAG(client)

	answer, err := rag.Answer(context.Background(), "what is a pointer?",
		[]string{"a pointer holds the address of a value"})

	require.NoError(t, err)
	assert.Equal(t, "pointers hold memory addresses", answer)

	// 提示词包含问题与上下文，模板占位符已全部替换
	assert.Contains(t, client.lastPrompt, "what is a pointer?")
	assert.Contains(t, client.lastPrompt, "a pointer holds the address of a value")
	assert.NotContains(t, client.lastPrompt, "{{.Context}}")
	assert.NotContains(t, client.lastPrompt, "{{.Question}}")
}

func TestRAGAnswerEmptyQuestion(t *testing.T) {
	rag := NewRAG(&fakeGenClient{})

	_, err := rag.Answer(context.Background(), "", []string{"some context"})
	require.Error(t, err)

	var llmErr LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrCodeEmptyPrompt, llmErr.Code)
}

func TestRAGAnswerGenerationFailure(t *testing.T) {
	rag := NewRAG(&fakeGenClient{fail: true})

	_, err := rag.Answer(context.Background(), "question", []string{"context"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed")
}

func TestRAGContextNumbering(t *testing.T) {
	client := &fakeGenClient{answer: "ok"}
	rag := NewRAG(client)

	_, err := rag.Answer(context.Background(), "q", []string{"first chunk", "second chunk"})
	require.NoError(t, err)

	assert.Contains(t, client.lastPrompt, "[1] first chunk")
	assert.Contains(t, client.lastPrompt, "[2] second chunk")
}

func TestRAGCustomTemplate(t *testing.T) {
	client := &fakeGenClient{answer: "ok"}
	rag := NewRAG(client, WithTemplate("Q: {{.Question}} C: {{.Context}}"))

	_, err := rag.Answer(context.Background(), "my question", []string{"my context"})
	require.NoError(t, err)

	assert.Contains(t, client.lastPrompt, "Q: my question")
	assert.Contains(t, client.lastPrompt, "[1] my context")
}
