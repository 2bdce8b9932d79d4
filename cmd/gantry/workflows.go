package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/gantry/pkg/domain"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List workflow definitions and their triggers",
	Run: func(cmd *cobra.Command, args []string) {
		dirFlag, _ := cmd.Flags().GetString("dir")

		loader, err := openLoader(dirFlag)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		wfs, err := loader.Workflows()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		name := color.New(color.Bold)
		for _, wf := range wfs {
			name.Println(wf.Name)
			fmt.Printf("  on: %s\n", describeTriggers(wf.On))
			for _, job := range wf.Jobs {
				fmt.Printf("  job %s: %d steps\n", job.ID, len(job.Steps))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
}

func describeTriggers(on domain.Triggers) string {
	var parts []string
	if on.Push != nil {
		switch {
		case len(on.Push.Tags) > 0:
			parts = append(parts, "push tags "+strings.Join(on.Push.Tags, ","))
		case len(on.Push.Branches) > 0:
			parts = append(parts, "push branches "+strings.Join(on.Push.Branches, ","))
		default:
			parts = append(parts, "push")
		}
	}
	if on.PullRequest != nil {
		parts = append(parts, "pull_request")
	}
	if on.MergeGroup != nil {
		parts = append(parts, "merge_group")
	}
	for _, s := range on.Schedule {
		parts = append(parts, "cron "+s.Cron)
	}
	if on.WorkflowDispatch != nil {
		parts = append(parts, "workflow_dispatch")
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, ", ")
}
