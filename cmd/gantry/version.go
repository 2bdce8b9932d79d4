package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/gantry"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gantry",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gantry version %s\n", strings.TrimSpace(gantry.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
