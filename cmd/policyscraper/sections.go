package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"policyscraper/internal/config"
)

// NewSectionsCmd creates the sections command.
func NewSectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List the known sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(config.AppConfig)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if main, ok := reg.Main(); ok {
				fmt.Fprintf(tw, "%s\t%s\n", main.Name, main.URL)
			}
			for _, t := range reg.Sections() {
				fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.URL)
			}
			return tw.Flush()
		},
	}
}
