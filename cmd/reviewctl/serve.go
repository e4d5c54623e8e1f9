package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/reviewpulse/internal/api"
	"github.com/spf13/cobra"
)

func (c *cli) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if c.cfg.Env != "dev" {
				gin.SetMode(gin.ReleaseMode)
			}

			opts := []api.Option{
				api.WithWorkDir(c.cfg.API.WorkDir),
				api.WithAllowedOrigin(c.cfg.API.AllowedOrigin),
			}
			for name, healthy := range a.StartHealthMonitors(cmd.Context()) {
				opts = append(opts, api.WithHealth(name, healthy))
			}

			if addr == "" {
				addr = c.cfg.API.Addr
			}
			err = api.NewServer(a.Service, opts...).Run(cmd.Context(), addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to API_ADDR)")
	return cmd
}
