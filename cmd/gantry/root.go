package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gantry",
	Short: "Gantry is a workflow engine for hardened CI pipelines",
	Long: `Gantry loads workflow definitions, enforces their hardening rules
(least privilege, pinned actions, harden-runner first), and executes them
in response to pushes, pull requests, merge queues, and schedules.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands). An empty dir selects
	// the embedded catalog.
	rootCmd.PersistentFlags().String("dir", "", "Directory containing workflow definitions")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
