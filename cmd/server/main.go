package main

import (
	"os"

	"github.com/spf13/cobra"

	"cosmic-chat/backend/internal/app"
)

// @title           Cosmic Chat API
// @version         1.0
// @description     Credential-gated streaming relay to an upstream LLM provider.
// @host            localhost:8000
// @BasePath        /api

func main() {
	os.Exit(execute())
}

func execute() int {
	var configFile string
	code := 0

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay",
		Run: func(cmd *cobra.Command, args []string) {
			code = app.Run(configFile)
		},
	}

	root := &cobra.Command{
		Use:          "cosmic-chat",
		Short:        "Streaming chat relay for OpenAI and Anthropic models",
		SilenceUsage: true,
		Run:          serve.Run,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./.env or ./config/.env)")

	root.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Run: func(cmd *cobra.Command, args []string) {
			code = app.Migrate(configFile)
		},
	})

	if err := root.Execute(); err != nil {
		return 1
	}
	return code
}
