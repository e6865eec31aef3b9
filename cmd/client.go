package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotify-mcp/internal/agent"
	"github.com/desertthunder/spotify-mcp/internal/session"
	"github.com/desertthunder/spotify-mcp/internal/shared"
	"github.com/desertthunder/spotify-mcp/internal/ui"
	"github.com/urfave/cli/v3"
)

// Client connects to a stream server, then runs one of three modes: the fixed
// self-test sequence (--test), the interactive chat terminal (--chat), or a
// prompt asking the user to pick when neither flag is given.
func (r *Runner) Client(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: server URL is required (e.g. http://localhost:8080/sse)", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd.String("config"))

	sess, err := session.Connect(ctx, url, session.Opts{
		Logger:     shared.WithLogger(r.logger, "component", "session"),
		ClientName: "spotify-mcp-client",
		Version:    Version,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	descriptors, err := sess.ListTools(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(descriptors))
	for _, t := range descriptors {
		names = append(names, t.Name)
	}
	r.writePlain("Connected to %s (%d tools: %s)\n", url, len(names), strings.Join(names, ", "))

	switch {
	case cmd.Bool("test"):
		return sess.SelfTest(ctx, r.output)
	case cmd.Bool("chat"):
		return r.chat(ctx, config, sess)
	}

	return r.choose(ctx, config, sess)
}

// choose prompts for a mode when no flag selected one.
func (r *Runner) choose(ctx context.Context, config *shared.Config, sess *session.Session) error {
	r.writePlain("\nWhat would you like to do?\n")
	r.writePlain("  1. Run the self-test sequence\n")
	r.writePlain("  2. Start the chat terminal\n")
	r.writePlain("  3. Both\n")
	r.writePlain("> ")

	reader := bufio.NewReader(r.input)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("%w: failed to read choice: %v", shared.ErrInvalidInput, err)
	}

	switch strings.TrimSpace(line) {
	case "1":
		return sess.SelfTest(ctx, r.output)
	case "2":
		return r.chat(ctx, config, sess)
	case "3":
		if err := sess.SelfTest(ctx, r.output); err != nil {
			return err
		}
		return r.chat(ctx, config, sess)
	default:
		return fmt.Errorf("%w: expected 1, 2 or 3", shared.ErrInvalidInput)
	}
}

// chat runs the LLM orchestration loop behind the interactive terminal.
func (r *Runner) chat(ctx context.Context, config *shared.Config, sess *session.Session) error {
	llm, err := agent.NewOpenAIClient(agent.OpenAIOpts{
		BaseURL:    config.LLM.BaseURL,
		APIKey:     config.LLM.APIKey,
		Model:      config.LLM.Model,
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "component", "llm"),
	})
	if err != nil {
		return err
	}

	loop := agent.New(agent.Opts{
		LLM:      llm,
		Caller:   sess,
		Logger:   shared.WithLogger(r.logger, "component", "agent"),
		MaxTurns: config.LLM.MaxTurns,
	})

	program := tea.NewProgram(ui.NewModel(ctx, loop.Run))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat terminal failed: %w", err)
	}

	return nil
}
