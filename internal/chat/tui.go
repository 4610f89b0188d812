package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// messageRole 聊天消息角色
type messageRole int

const (
	roleUser messageRole = iota
	roleAssistant
	roleError
)

// chatMessage 聊天历史中的一条消息
// 历史只是前端展示状态，不参与后端问答流程
type chatMessage struct {
	role    messageRole
	content string
	sources []string
}

// answerMsg 后端返回答案
type answerMsg struct {
	answer  string
	sources []string
}

// errMsg 后端请求失败
type errMsg struct {
	err error
}

// Asker 后端问答客户端接口
type Asker interface {
	Ask(ctx context.Context, question string) (answer string, sources []string, err error)
}

// clientAsker 将Client适配为Asker接口
type clientAsker struct {
	client *Client
}

func (a *clientAsker) Ask(ctx context.Context, question string) (string, []string, error) {
	resp, err := a.client.Ask(ctx, question)
	if err != nil {
		return "", nil, err
	}
	return resp.Answer, resp.Sources, nil
}

// Model 聊天界面的Bubble Tea模型
type Model struct {
	asker    Asker
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	history  []chatMessage
	waiting  bool
	ready    bool
}

// NewModel 创建聊天界面模型
func NewModel(client *Client) Model {
	return newModelWithAsker(&clientAsker{client: client})
}

func newModelWithAsker(asker Asker) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		asker:    asker,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

// Init 初始化模型
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// askCmd 异步向后端提问
func (m Model) askCmd(question string) tea.Cmd {
	asker := m.asker
	return func() tea.Msg {
		answer, sources, err := asker.Ask(context.Background(), question)
		if err != nil {
			return errMsg{err: err}
		}
		return answerMsg{answer: answer, sources: sources}
	}
}

// Update 处理按键、窗口和后端响应事件
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 // header + input frame + status line
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.String() == "esc" {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.history = append(m.history, chatMessage{role: roleUser, content: question})
			m.input.Reset()
			m.waiting = true
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
			return m, tea.Batch(m.askCmd(question), m.spinner.Tick)
		}

	case answerMsg:
		m.waiting = false
		m.history = append(m.history, chatMessage{
			role:    roleAssistant,
			content: msg.answer,
			sources: msg.sources,
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case errMsg:
		m.waiting = false
		m.history = append(m.history, chatMessage{
			role:    roleError,
			content: renderError(msg.err),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View 渲染聊天界面
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("TechDoc Assistant")
	status := ""
	if m.waiting {
		status = m.spinner.View() + " Thinking..."
	} else {
		status = statusStyle.Render("Enter to send, Esc to quit")
	}

	return header + "\n" + m.viewport.View() + "\n" + inputBoxStyle.Render(m.input.View()) + "\n" + status
}

// renderHistory 渲染完整聊天历史
func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "Ask a question about your documents."
	}

	var b strings.Builder
	for i, message := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch message.role {
		case roleUser:
			b.WriteString(userStyle.Render("You: ") + message.content)
		case roleAssistant:
			b.WriteString(assistantStyle.Render("Assistant: ") + message.content)
			if len(message.sources) > 0 {
				b.WriteString("\n" + sourceStyle.Render("Sources: "+strings.Join(message.sources, ", ")))
			}
		case roleError:
			b.WriteString(errorStyle.Render(message.content))
		}
	}
	return b.String()
}

// renderError 将错误转换为聊天提示文案
func renderError(err error) string {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.UserMessage()
	}
	return fmt.Sprintf("Request failed: %v", err)
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)
