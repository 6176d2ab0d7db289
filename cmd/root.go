package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:     "gosegment",
		Short:   "classify long reads against a segment-graph construct library",
		Long:    `classify long reads against a segment-graph construct library`,
		Version: "0.1.0",
	}
)

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
