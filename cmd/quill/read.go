package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var readJSON bool

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Print a post",
	Long:  `Read a post by its ID. Outputs the raw Markdown source by default, or a JSON object with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()

		post, err := svc.GetPost(context.Background(), args[0])
		if err != nil {
			fatal("reading post", err)
		}

		if readJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(post); err != nil {
				fatal("encoding JSON", err)
			}
			return
		}

		src, err := os.ReadFile(post.Path)
		if err != nil {
			fatal("reading post", err)
		}
		fmt.Print(string(src))
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
