package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotify-mcp/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the embedded starter configuration to disk.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	r.writePlain("✓ Created %s\n\n", path)
	r.writePlain("Fill in your Spotify client_id and client_secret, then run: spotify-mcp auth\n")

	return nil
}
