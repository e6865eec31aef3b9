package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func noopRunner(ctx context.Context, query string) (string, error) {
	return "answer", nil
}

func TestModelQuit(t *testing.T) {
	t.Run("ctrl+c quits", func(t *testing.T) {
		m := NewModel(context.Background(), noopRunner)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Fatal("Expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("Expected tea.QuitMsg")
		}
	})

	t.Run("typing quit quits", func(t *testing.T) {
		m := NewModel(context.Background(), noopRunner)
		m.input.SetValue("quit")

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatal("Expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("Expected tea.QuitMsg")
		}
	})
}

func TestModelSubmit(t *testing.T) {
	t.Run("empty input is ignored", func(t *testing.T) {
		m := NewModel(context.Background(), noopRunner)

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd != nil {
			t.Error("Expected no command for empty input")
		}
		if updated.(*Model).waiting {
			t.Error("Expected model not waiting")
		}
	})

	t.Run("query starts waiting", func(t *testing.T) {
		m := NewModel(context.Background(), noopRunner)
		m.input.SetValue("what's playing?")

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatal("Expected batch command")
		}
		if !updated.(*Model).waiting {
			t.Error("Expected model waiting")
		}
	})

	t.Run("input is blocked while waiting", func(t *testing.T) {
		m := NewModel(context.Background(), noopRunner)
		m.waiting = true

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd != nil {
			t.Error("Expected submit to be ignored while waiting")
		}
	})
}

func TestModelMessages(t *testing.T) {
	t.Run("answer lands in history", func(t *testing.T) {
		m := NewModel(context.Background(), noopRunner)
		m.waiting = true

		updated, _ := m.Update(answerReceivedMsg("what's playing?", "Radio Ga Ga"))
		model := updated.(*Model)
		if model.waiting {
			t.Error("Expected waiting cleared")
		}
		if len(model.history) != 1 || model.history[0].answer != "Radio Ga Ga" {
			t.Errorf("Expected answer recorded, got %+v", model.history)
		}
	})

	t.Run("failure lands in history", func(t *testing.T) {
		m := NewModel(context.Background(), noopRunner)
		m.waiting = true

		updated, _ := m.Update(queryFailedMsg(errors.New("session closed")))
		model := updated.(*Model)
		if model.waiting {
			t.Error("Expected waiting cleared")
		}
		if len(model.history) != 1 || model.history[0].err == nil {
			t.Errorf("Expected error recorded, got %+v", model.history)
		}
	})
}

func TestModelView(t *testing.T) {
	m := NewModel(context.Background(), noopRunner)
	m.history = append(m.history, entry{query: "what's playing?", answer: "Radio Ga Ga"})

	view := m.View()
	if !strings.Contains(view, "Spotify Chat") {
		t.Error("Expected title in view")
	}
	if !strings.Contains(view, "Radio Ga Ga") {
		t.Error("Expected answer in view")
	}

	m.waiting = true
	if !strings.Contains(m.View(), "thinking") {
		t.Error("Expected spinner hint while waiting")
	}
}
