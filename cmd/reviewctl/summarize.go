package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) summarizeCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize reviews from a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCSV("source", source); err != nil {
				return err
			}

			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var summary string
			err = newProgress(cmd.OutOrStdout()).run("Summarizing reviews from CSV file: "+source, func() error {
				var err error
				summary, err = a.Service.SummarizeFile(cmd.Context(), source)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Source of the CSV file")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
