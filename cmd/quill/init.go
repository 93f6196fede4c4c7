package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a quill project",
	Long: `Write a default quill.yaml and create the posts directory.
Without an argument the current directory is used.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			fatal("resolving directory", err)
		}

		cfg := quill.DefaultConfig()
		if postsDir != "" {
			cfg.Posts = postsDir
		}
		if _, err := os.Stat(filepath.Join(abs, quill.ConfigFile)); os.IsNotExist(err) {
			if err := quill.WriteConfig(abs, cfg); err != nil {
				fatal("writing "+quill.ConfigFile, err)
			}
		}

		if _, err := quill.Init(abs, projectOptions()...); err != nil {
			fatal("initializing project", err)
		}

		fmt.Println("Initialized quill project in", abs)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
