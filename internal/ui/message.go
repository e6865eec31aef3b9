package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the chat application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgAnswerReceived MsgKind = iota
	MsgQueryFailed
)

type answerData struct {
	query  string
	answer string
}

// answerReceivedMsg is the constructor for [MsgAnswerReceived]
func answerReceivedMsg(query, answer string) Msg {
	return Msg{kind: MsgAnswerReceived, data: answerData{query: query, answer: answer}}
}

// queryFailedMsg is the constructor for [MsgQueryFailed]
func queryFailedMsg(err error) Msg {
	return Msg{kind: MsgQueryFailed, data: err}
}
