package main

import (
	"fmt"
	"strings"

	"github.com/spacesedan/reviewpulse/internal/models"
	"github.com/spacesedan/reviewpulse/internal/processing"
	"github.com/spf13/cobra"
)

func (c *cli) scrapeCmd() *cobra.Command {
	var (
		count       int
		order       string
		destination string
	)

	cmd := &cobra.Command{
		Use:   "scrape URL",
		Short: "Scrape reviews from a product URL and save them to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCSV("destination", destination); err != nil {
				return err
			}
			sort, err := models.ParseSortOrder(order)
			if err != nil {
				return err
			}

			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var reviews []string
			err = newProgress(cmd.OutOrStdout()).run("Scraping reviews from "+args[0], func() error {
				var err error
				reviews, err = a.Service.ScrapeToCSV(cmd.Context(), args[0], count, sort, destination)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d reviews saved to %s\n", len(reviews), destination)
			return nil
		},
	}

	orders := make([]string, len(models.SortOrders))
	for i, o := range models.SortOrders {
		orders[i] = string(o)
	}

	cmd.Flags().IntVarP(&count, "count", "c", processing.DefaultReviewCount,
		fmt.Sprintf("Number of reviews to scrape (1-%d)", processing.MaxReviewCount))
	cmd.Flags().StringVarP(&order, "order", "o", string(models.SortRelevancy),
		"Sorting method for the reviews: "+strings.Join(orders, ", "))
	cmd.Flags().StringVarP(&destination, "destination", "d", processing.DefaultReviewsFile, "Destination of the CSV file")
	return cmd
}
