package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/app"
	"github.com/spacesedan/reviewpulse/internal/logging"
	"github.com/spf13/cobra"
)

type cli struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "reviewctl",
		Short:        "Scrape, analyze and summarize product reviews",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.InitLogger(cfg.LogLevel)
			c.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		c.scrapeCmd(),
		c.analyzeCmd(),
		c.summarizeCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) build(ctx context.Context) (*app.App, error) {
	return app.Build(ctx, c.cfg)
}

func requireCSV(flag, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return fmt.Errorf("--%s: %s must be a CSV file", flag, path)
	}
	return nil
}
