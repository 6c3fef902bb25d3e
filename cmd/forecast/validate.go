package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/inventory-forecast/factory"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every schedule in a file",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadSettings()
	if err != nil {
		return err
	}
	if flagSchedules == "" {
		return errors.New("--schedules is required")
	}

	schedules, issues, err := factory.LoadFile(flagSchedules, unitFor(cfg))
	if err != nil {
		return err
	}
	unreadable := make(map[int]error, len(issues))
	for _, issue := range issues {
		unreadable[issue.Index] = issue.Err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	invalid := 0
	for i, s := range schedules {
		status := "ok"
		if err := unreadable[i]; err != nil {
			status = err.Error()
			invalid++
		} else if err := s.Validate(); err != nil {
			status = err.Error()
			invalid++
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\n", i, s.ID, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d schedules invalid", invalid, len(schedules))
	}
	return nil
}
