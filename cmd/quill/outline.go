package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/outline"
)

var (
	outlineTOC    bool
	outlineNumber bool
	outlineJSON   bool
)

var outlineCmd = &cobra.Command{
	Use:   "outline <id>",
	Short: "Show the heading structure and statistics of a post",
	Long: `Print the headings of a post with word count and estimated read time.
Headings are numbered when the post sets autonumbering or --number is given.
With --toc a Markdown table of contents is printed instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		post, err := svc.GetPost(context.Background(), args[0])
		if err != nil {
			fatal("reading post", err)
		}

		settings, err := quill.Resolve(projectRoot(), projectOptions()...)
		if err != nil {
			fatal("loading configuration", err)
		}

		o := outline.Analyze([]byte(post.Body), post.FrontMatter.Autonumbering || outlineNumber)

		switch {
		case outlineJSON:
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(o); err != nil {
				fatal("encoding JSON", err)
			}
		case outlineTOC:
			fmt.Print(o.TOC())
		default:
			fmt.Printf("%s\n", post.FrontMatter.Title)
			fmt.Printf("%d words, ~%d min read (declared %d)\n\n", o.Words, o.ReadTime(settings.WordsPerMinute), post.FrontMatter.ReadTime)
			for _, h := range o.Headings {
				label := h.Text
				if h.Number != "" {
					label = h.Number + " " + label
				}
				fmt.Printf("%s%s\n", strings.Repeat("  ", h.Level-1), label)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	outlineCmd.Flags().BoolVar(&outlineTOC, "toc", false, "Print a Markdown table of contents")
	outlineCmd.Flags().BoolVar(&outlineNumber, "number", false, "Number headings even without autonumbering")
	outlineCmd.Flags().BoolVar(&outlineJSON, "json", false, "Output in JSON format")
}
