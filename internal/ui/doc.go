// Package ui implements the interactive chat terminal for the client command.
//
// The Elm-style [Model] renders the running conversation, forwards each
// submitted query to the orchestration loop in a background command, and shows
// a spinner while a response is pending. "quit" or ctrl+c exits.
package ui
