package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/stream"
)

var (
	chatPromptStyle = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	chatBodyStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	chatFooterStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ChatModel - Streaming answer view
// =============================================================================

type fragmentMsg string

type streamDoneMsg struct{ err error }

// ChatModel is the bubbletea model that renders a chat answer as it streams.
// Quitting before the answer is complete closes the stream, which cancels
// the model request.
type ChatModel struct {
	Prompt string
	Answer string
	Err    error
	Done   bool
	Width  int

	stream *stream.Stream
}

// NewChatModel creates a view over s for the given prompt.
func NewChatModel(prompt string, s *stream.Stream) ChatModel {
	return ChatModel{Prompt: prompt, stream: s, Width: 80}
}

func (m ChatModel) Init() tea.Cmd {
	return nextFragment(m.stream)
}

// nextFragment waits for one fragment on s.
func nextFragment(s *stream.Stream) tea.Cmd {
	return func() tea.Msg {
		if s.Next() {
			return fragmentMsg(s.Text())
		}
		return streamDoneMsg{err: s.Err()}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fragmentMsg:
		m.Answer += string(msg)
		return m, nextFragment(m.stream)
	case streamDoneMsg:
		m.Done = true
		m.Err = msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.stream.Close()
			return m, tea.Quit
		case "enter":
			if m.Done {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width-2, 20)
	}
	return m, nil
}

func (m ChatModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("FireAI"))
	b.WriteString("\n")
	b.WriteString(chatPromptStyle.Width(m.Width).Render("> " + m.Prompt))
	b.WriteString("\n\n")
	b.WriteString(chatBodyStyle.Width(m.Width).Render(m.Answer))
	b.WriteString("\n\n")

	switch {
	case m.Err != nil:
		b.WriteString(StyleError.Render(iconError + " " + m.Err.Error()))
		b.WriteString("\n")
		b.WriteString(chatFooterStyle.Render("⏎/q quit"))
	case m.Done:
		b.WriteString(chatFooterStyle.Render("⏎/q quit"))
	default:
		b.WriteString(chatFooterStyle.Render("streaming…  q stop"))
	}
	b.WriteString("\n")

	return b.String()
}
