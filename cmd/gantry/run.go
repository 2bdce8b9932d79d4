package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/gantry"
	"github.com/aretw0/gantry/internal/logging"
	"github.com/aretw0/gantry/pkg/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch a synthetic event and execute matching workflows",
	Long: `Builds an event from the flags and hands it to the engine, exactly as
the server would for a real delivery. Useful for trying a workflow locally:

  gantry run --event push --ref refs/tags/v1.2.3`,
	Run: func(cmd *cobra.Command, args []string) {
		dirFlag, _ := cmd.Flags().GetString("dir")
		debug, _ := cmd.Flags().GetBool("debug")
		event, _ := cmd.Flags().GetString("event")
		ref, _ := cmd.Flags().GetString("ref")
		branch, _ := cmd.Flags().GetString("branch")
		workflow, _ := cmd.Flags().GetString("workflow")
		allowRun, _ := cmd.Flags().GetBool("allow-run-steps")

		if err := runDispatch(dirFlag, debug, event, ref, branch, workflow, allowRun); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("event", "push", "Event kind: push, pull_request, merge_group, schedule, workflow_dispatch")
	runCmd.Flags().String("ref", "", "Git ref, e.g. refs/heads/main or refs/tags/v1.2.3")
	runCmd.Flags().String("branch", "", "Target branch for pull_request and merge_group events")
	runCmd.Flags().String("workflow", "", "Address the event to one workflow by name")
	runCmd.Flags().Bool("allow-run-steps", false, "Execute run: steps through the shell")
}

func runDispatch(dirFlag string, debug bool, event, ref, branch, workflow string, allowRun bool) error {
	logger := logging.NewNop()
	if debug {
		logger = logging.New(slog.LevelDebug)
	}

	eng, err := gantry.New(dirFlag,
		gantry.WithLogger(logger),
		gantry.WithActionRunner(buildRunner(allowRun)),
	)
	if err != nil {
		return err
	}

	ev := domain.Event{
		Kind:     domain.EventKind(event),
		Ref:      ref,
		Branch:   branch,
		Workflow: workflow,
	}

	runs, err := eng.Dispatch(context.Background(), ev)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No workflows matched the event.")
		return nil
	}

	failed := false
	for _, run := range runs {
		printRun(run)
		if run.Status == domain.StatusFailed {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more runs failed")
	}
	return nil
}

func printRun(run *domain.Run) {
	header := color.New(color.Bold)
	switch run.Status {
	case domain.StatusSucceeded:
		header.Printf("%s ", run.WorkflowName)
		color.Green("succeeded")
	case domain.StatusFailed:
		header.Printf("%s ", run.WorkflowName)
		color.Red("failed")
	default:
		header.Printf("%s %s\n", run.WorkflowName, run.Status)
	}

	for _, job := range run.Jobs {
		name := job.JobID
		if job.MatrixKey != "" {
			name = fmt.Sprintf("%s (%s)", job.JobID, job.MatrixKey)
		}
		fmt.Printf("  %s\n", name)
		for _, step := range job.Steps {
			mark := stepMark(step.Conclusion)
			fmt.Printf("    %s %s\n", mark, step.Name)
			if step.Error != "" {
				color.Red("      %s", step.Error)
			}
		}
	}
}

func stepMark(c domain.Conclusion) string {
	switch c {
	case domain.ConclusionSuccess:
		return color.GreenString("✔")
	case domain.ConclusionFailure:
		return color.RedString("✘")
	case domain.ConclusionSkipped:
		return color.YellowString("-")
	default:
		return "?"
	}
}
