package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"faturas/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Faturas %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
