package chat

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAsker 问答客户端测试替身
type fakeAsker struct {
	answer  string
	sources []string
	err     error
	asked   []string
}

func (f *fakeAsker) Ask(ctx context.Context, question string) (string, []string, error) {
	f.asked = append(f.asked, question)
	if f.err != nil {
		return "", nil, f.err
	}
	return f.answer, f.sources, nil
}

func pressEnter(m Model) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func typeQuestion(m Model, question string) Model {
	m.input.SetValue(question)
	return m
}

func TestSubmitQuestion(t *testing.T) {
	asker := &fakeAsker{answer: "use go mod init", sources: []string{"modules.txt"}}
	m := newModelWithAsker(asker)

	m = typeQuestion(m, "how do I create a module?")
	m, cmd := pressEnter(m)
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	require.Len(t, m.history, 1)
	assert.Equal(t, roleUser, m.history[0].role)
	assert.Equal(t, "", m.input.Value())
}

func TestEmptyInputNotSubmitted(t *testing.T) {
	m := newModelWithAsker(&fakeAsker{})

	m = typeQuestion(m, "   ")
	m, cmd := pressEnter(m)
	assert.Nil(t, cmd)
	assert.False(t, m.waiting)
	assert.Empty(t, m.history)
}

func TestEnterIgnoredWhileWaiting(t *testing.T) {
	asker := &fakeAsker{answer: "a"}
	m := newModelWithAsker(asker)

	m = typeQuestion(m, "first")
	m, _ = pressEnter(m)
	require.True(t, m.waiting)

	m = typeQuestion(m, "second")
	m, cmd := pressEnter(m)
	assert.Nil(t, cmd)
	require.Len(t, m.history, 1)
}

func TestAnswerAppendedToHistory(t *testing.T) {
	m := newModelWithAsker(&fakeAsker{})
	m.waiting = true

	updated, _ := m.Update(answerMsg{answer: "use go mod init", sources: []string{"modules.txt"}})
	m = updated.(Model)

	assert.False(t, m.waiting)
	require.Len(t, m.history, 1)
	assert.Equal(t, roleAssistant, m.history[0].role)
	assert.Equal(t, "use go mod init", m.history[0].content)
	assert.Equal(t, []string{"modules.txt"}, m.history[0].sources)
}

func TestErrorRenderedAsUserMessage(t *testing.T) {
	m := newModelWithAsker(&fakeAsker{})
	m.waiting = true

	clientErr := &ClientError{Kind: KindConnection, Message: "dial tcp: connection refused"}
	updated, _ := m.Update(errMsg{err: clientErr})
	m = updated.(Model)

	assert.False(t, m.waiting)
	require.Len(t, m.history, 1)
	assert.Equal(t, roleError, m.history[0].role)
	assert.Equal(t, clientErr.UserMessage(), m.history[0].content)
}

func TestAskCmdReturnsAnswerMsg(t *testing.T) {
	asker := &fakeAsker{answer: "answer", sources: []string{"a.txt"}}
	m := newModelWithAsker(asker)

	msg := m.askCmd("question")()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	assert.Equal(t, "answer", answer.answer)
	assert.Equal(t, []string{"a.txt"}, answer.sources)
	assert.Equal(t, []string{"question"}, asker.asked)
}

func TestAskCmdReturnsErrMsg(t *testing.T) {
	asker := &fakeAsker{err: &ClientError{Kind: KindTimeout, Message: "deadline exceeded"}}
	m := newModelWithAsker(asker)

	msg := m.askCmd("question")()
	_, ok := msg.(errMsg)
	require.True(t, ok)
}

func TestCtrlCQuits(t *testing.T) {
	m := newModelWithAsker(&fakeAsker{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindowSizeMakesModelReady(t *testing.T) {
	m := newModelWithAsker(&fakeAsker{})
	require.False(t, m.ready)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)
	assert.True(t, m.ready)
	assert.Equal(t, 80, m.viewport.Width)
	assert.Greater(t, m.viewport.Height, 0)
}
