package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill/pkg/core"
)

var (
	listJSON    bool
	listDrafts  bool
	filterTag   string
	listPattern string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()

		posts, err := svc.ListPosts(context.Background(), core.Filter{
			IncludeDrafts: listDrafts,
			Tag:           filterTag,
			Pattern:       listPattern,
		})
		if err != nil {
			fatal("listing posts", err)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(posts); err != nil {
				fatal("encoding JSON", err)
			}
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, p := range posts {
			date := "----------"
			if !p.FrontMatter.Date.IsZero() {
				date = p.FrontMatter.Date.Format(time.DateOnly)
			}
			status := ""
			if p.FrontMatter.Draft {
				status = "draft"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", date, p.ID, p.FrontMatter.Title, status)
		}
		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listDrafts, "drafts", false, "Include drafts")
	listCmd.Flags().StringVar(&filterTag, "tag", "", "Filter posts by tag")
	listCmd.Flags().StringVar(&listPattern, "pattern", "", "Filter post IDs by glob (e.g. '2024/**')")
}
