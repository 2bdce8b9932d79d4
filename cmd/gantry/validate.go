package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/gantry/pkg/adapters/dir"
	"github.com/aretw0/gantry/pkg/catalog"
	"github.com/aretw0/gantry/pkg/ports"
	"github.com/aretw0/gantry/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check workflow definitions against the hardening rules",
	Long: `Validates every workflow in the directory (or the embedded catalog)
and reports each violation: unpinned actions, over-broad permissions,
missing harden-runner steps, bad cron expressions.`,
	Run: func(cmd *cobra.Command, args []string) {
		dirFlag, _ := cmd.Flags().GetString("dir")
		if err := runValidate(dirFlag); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(dirFlag string) error {
	loader, err := openLoader(dirFlag)
	if err != nil {
		color.Red("failed to load workflows: %v", err)
		return err
	}

	wfs, err := loader.Workflows()
	if err != nil {
		color.Red("failed to list workflows: %v", err)
		return err
	}

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	rule := color.New(color.FgYellow)

	failed := false
	for i := range wfs {
		err := schema.Validate(&wfs[i])
		if err == nil {
			ok.Printf("✔ %s\n", wfs[i].Name)
			continue
		}

		failed = true
		bad.Printf("✘ %s\n", wfs[i].Name)

		for _, ruleErr := range schema.RuleErrors(err) {
			var re *schema.RuleError
			if errors.As(ruleErr, &re) {
				rule.Printf("  [%s] ", re.Rule)
				fmt.Printf("%s: %s\n", re.Path, re.Reason)
			} else {
				fmt.Printf("  %v\n", ruleErr)
			}
		}
		if len(schema.RuleErrors(err)) == 0 {
			fmt.Printf("  %v\n", err)
		}
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// openLoader picks the directory loader or the embedded catalog.
func openLoader(dirFlag string) (ports.WorkflowLoader, error) {
	if dirFlag == "" {
		return catalog.NewLoader(), nil
	}
	return dir.New(dirFlag)
}
