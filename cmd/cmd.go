// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// register returns the full top-level command set bound to the runner.
func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		serveCommand(r),
		clientCommand(r),
		authCommand(r),
		setupCommand(r),
	}
}

// serveCommand starts the stream server hosting the tool registry.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the MCP stream server exposing Spotify tools over SSE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// clientCommand connects to a running stream server.
func clientCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Connect to a stream server and exercise its tools",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "test",
				Usage: "Run the fixed self-test tool sequence and exit",
			},
			&cli.BoolFlag{
				Name:  "chat",
				Usage: "Start the interactive LLM chat terminal",
			},
		},
		Action: r.Client,
	}
}

// authCommand handles the Spotify OAuth2 authorization flow.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify using OAuth2",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Auth,
	}
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter config.toml in the current directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
