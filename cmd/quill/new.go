package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var newTitle string

var newCmd = &cobra.Command{
	Use:   "new <id>",
	Short: "Scaffold a new draft post",
	Long: `Create <id>.md under the posts directory with a complete front-matter
block. The post starts as a draft dated today; use 'quill publish' to
release it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		title := newTitle
		if title == "" {
			title = id
		}

		svc := openService()
		now := time.Now().UTC().Truncate(24 * time.Hour)
		if _, err := svc.CreatePost(context.Background(), id, title, now); err != nil {
			fatal("creating post", err)
		}

		fmt.Printf("Created draft %s\n", id)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "Post title (defaults to the ID)")
}
