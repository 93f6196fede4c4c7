package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
)

type status struct {
	Version  string         `json:"version"`
	Settings quill.Settings `json:"settings"`
	Service  any            `json:"service"`
	Storage  any            `json:"storage,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the effective configuration and component state as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root := projectRoot()
		settings, err := quill.Resolve(root, projectOptions()...)
		if err != nil {
			fatal("loading configuration", err)
		}

		svc := openService(quill.WithReadOnly(true))
		out := status{
			Version:  strings.TrimSpace(quill.Version),
			Settings: settings,
			Service:  svc.State(),
		}
		if in, ok := svc.Repository().(introspection.Introspectable); ok {
			out.Storage = in.State()
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
