package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

type commandContext struct {
	baseURL string
	timeout time.Duration
}

func (c *commandContext) client() *apiClient {
	return &apiClient{
		BaseURL: c.baseURL,
		HTTP:    &http.Client{Timeout: c.timeout},
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "albumhub",
		Short:         "Client for the albumhub read API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.baseURL, "api", defaultBaseURL, "API base URL")
	rootCmd.PersistentFlags().DurationVar(&ctx.timeout, "timeout", 15*time.Second, "HTTP timeout")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newGenresCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newFeedCommand(ctx))

	return rootCmd
}
