package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Clear the draft flag of a post",
	Long:  `Mark a post as published. A post without a date is stamped with today's date.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		now := time.Now().UTC().Truncate(24 * time.Hour)

		post, err := svc.Publish(context.Background(), args[0], now)
		if err != nil {
			fatal("publishing post", err)
		}

		fmt.Printf("Published %s (%s)\n", post.ID, post.FrontMatter.Date.Format(time.DateOnly))
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
