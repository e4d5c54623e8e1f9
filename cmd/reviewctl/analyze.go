package main

import (
	"fmt"

	"github.com/spacesedan/reviewpulse/internal/models"
	"github.com/spacesedan/reviewpulse/internal/processing"
	"github.com/spf13/cobra"
)

func (c *cli) analyzeCmd() *cobra.Command {
	var (
		source      string
		destination string
		aspects     []string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze sentiment from a CSV file",
		Long: "Analyze sentiment from a CSV file with a review column. Without --aspect the whole review\n" +
			"is classified; with one or more aspects only reviews mentioning them are.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCSV("source", source); err != nil {
				return err
			}
			if err := requireCSV("destination", destination); err != nil {
				return err
			}

			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if len(aspects) == 0 {
				var analysis *models.GeneralAnalysis
				err = newProgress(out).run(fmt.Sprintf("Analyzing sentiment from CSV file: %s", source), func() error {
					var err error
					analysis, err = a.Service.AnalyzeGeneralFile(cmd.Context(), source, destination)
					return err
				})
				if err != nil {
					return err
				}
				printGeneralAnalysis(out, analysis)
			} else {
				var analysis *models.AspectAnalysis
				err = newProgress(out).run(fmt.Sprintf("Analyzing aspects %v from CSV file: %s", aspects, source), func() error {
					var err error
					analysis, err = a.Service.AnalyzeAspectsFile(cmd.Context(), source, destination, aspects)
					return err
				})
				if err != nil {
					return err
				}
				printAspectAnalysis(out, analysis)
			}

			fmt.Fprintf(out, "Details saved to %s\n", destination)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Source of the CSV file")
	cmd.Flags().StringVarP(&destination, "destination", "d", processing.DefaultDetailsFile, "Destination of the detail table")
	cmd.Flags().StringArrayVarP(&aspects, "aspect", "a", nil, "Aspect to analyze, repeatable")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
