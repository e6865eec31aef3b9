package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotify-mcp/internal/server"
	"github.com/desertthunder/spotify-mcp/internal/shared"
	"github.com/desertthunder/spotify-mcp/internal/tools"
	"github.com/urfave/cli/v3"
)

// Serve runs the stream server until interrupted.
//
// The Spotify backend is built once at startup and shared by every session;
// tool dispatch itself is stateless.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	addr := cmd.String("addr")
	if addr == "" {
		addr = config.Server.Addr()
	}

	backend, err := r.newSpotify(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	dispatcher := tools.NewDispatcher(backend, shared.WithLogger(r.logger, "component", "dispatcher"))

	streamServer := server.NewStreamServer(server.StreamServerOpts{
		Name:       "spotify-mcp",
		Version:    Version,
		Addr:       addr,
		Dispatcher: dispatcher,
		Logger:     shared.WithLogger(r.logger, "component", "server"),
	})

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- streamServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-signalCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()

	return streamServer.Shutdown(shutdownCtx)
}
