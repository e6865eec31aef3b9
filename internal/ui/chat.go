package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// QueryRunner executes one query through the orchestration loop and returns
// the final answer.
type QueryRunner func(ctx context.Context, query string) (string, error)

// entry is one rendered exchange in the transcript.
type entry struct {
	query  string
	answer string
	err    error
}

// Model is the Elm-style model for the interactive chat terminal.
type Model struct {
	ctx     context.Context
	run     QueryRunner
	input   textinput.Model
	spin    spinner.Model
	history []entry
	waiting bool
	quit    bool
}

// NewModel creates the chat model bound to a query runner.
func NewModel(ctx context.Context, run QueryRunner) *Model {
	input := textinput.New()
	input.Placeholder = "Ask about your music (or 'quit')"
	input.Focus()
	input.CharLimit = 512

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		ctx:   ctx,
		run:   run,
		input: input,
		spin:  spin,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case Msg:
		switch msg.kind {
		case MsgAnswerReceived:
			data := msg.data.(answerData)
			m.history = append(m.history, entry{query: data.query, answer: data.answer})
			m.waiting = false
			return m, nil
		case MsgQueryFailed:
			m.history = append(m.history, entry{err: msg.data.(error)})
			m.waiting = false
			return m, nil
		}

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.waiting {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches the current input through the query runner.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}

	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}
	if strings.EqualFold(query, "quit") {
		m.quit = true
		return m, tea.Quit
	}

	m.input.Reset()
	m.waiting = true

	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		answer, err := m.run(m.ctx, query)
		if err != nil {
			return queryFailedMsg(err)
		}
		return answerReceivedMsg(query, answer)
	})
}

func (m *Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Spotify Chat"))
	b.WriteString("\n")

	for _, e := range m.history {
		if e.err != nil {
			b.WriteString(styles.err.Render(fmt.Sprintf("✗ %v", e.err)))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(styles.user.Render("You: "))
		b.WriteString(e.query)
		b.WriteString("\n")
		b.WriteString(e.answer)
		b.WriteString("\n\n")
	}

	if m.waiting {
		b.WriteString(m.spin.View())
		b.WriteString(styles.warn.Render(" thinking..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(styles.help.Render("enter: send • ctrl+c: exit"))
	b.WriteString("\n")

	return b.String()
}
