package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"policyscraper/internal/config"
	"policyscraper/internal/log"
)

// NewRootCmd creates the root command. Configuration is loaded from .env and
// the environment before any subcommand runs.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policyscraper",
		Short: "Scrape the Meta Community Standards pages into structured JSON",
		Long: `policyscraper fetches the pages of the Meta Community Standards, extracts
their visible text and structure, and reports the outcome of every page.

Configuration is read from a .env file in the working directory and from the
environment (see LISTEN_ADDR, REQUEST_DELAY, STORAGE_BACKEND and friends).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			log.InitLogger(config.AppConfig.IsDev)
		},
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewSectionsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	defer log.Sync()

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Sync()
		os.Exit(1)
	}
}
