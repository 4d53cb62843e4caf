package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsense-ai/docsense/internal/cli"
	"github.com/docsense-ai/docsense/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docsensed",
		Short: "Docsense daemon",
		Long:  "Docsense daemon for running the document intelligence API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
