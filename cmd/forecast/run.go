package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/inventory-forecast/factory"
	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
)

var (
	flagAmount  string
	flagToday   string
	flagMaxDays int
	flagJSON    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Forecast the depletion date",
	RunE:  runForecast,
}

func init() {
	runCmd.Flags().StringVarP(&flagAmount, "amount", "a", "", "Quantity on hand (decimal)")
	runCmd.Flags().StringVar(&flagToday, "today", "", "First day to simulate, YYYY-MM-DD (default: today)")
	runCmd.Flags().IntVar(&flagMaxDays, "max-days", 0, "Day cap for open-ended schedules (overrides config)")
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result as JSON")
	runCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(runCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadSettings()
	if err != nil {
		return err
	}
	if flagSchedules == "" {
		return errors.New("--schedules is required")
	}

	unit := unitFor(cfg)
	onHand, err := generic.ParseAmount(flagAmount, unit)
	if err != nil {
		return fmt.Errorf("--amount: %w", err)
	}

	schedules, issues, err := factory.LoadFile(flagSchedules, unit)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		log.WithField("index", issue.Index).WithError(issue.Err).Warn("unreadable schedule record")
	}

	engine := inventory.NewForecastEngine()
	engine.MaxDays = cfg.Forecast.MaxDays
	if flagMaxDays > 0 {
		engine.MaxDays = flagMaxDays
	}
	engine.Log = log
	if flagToday != "" {
		today, err := generic.ParseDate(flagToday)
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
		engine.Now = func() generic.TimePoint { return today }
	}

	result, runErr := engine.Run(cmd.Context(), schedules, onHand)
	if runErr != nil && !errors.Is(runErr, generic.ErrHorizonExceeded) {
		return runErr
	}
	if result.Outcome == inventory.OutcomeNoValidSchedules {
		log.WithError(generic.ErrNoValidSchedules).Warn("every schedule was excluded")
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		err = printJSON(out, result)
	} else {
		err = printResult(out, result)
	}
	if err != nil {
		return err
	}
	return runErr
}

type resultJSON struct {
	Outcome   string  `json:"outcome"`
	Date      *string `json:"date"`
	Remaining string  `json:"remaining"`
	Consumed  string  `json:"consumed"`
	Horizon   *string `json:"horizon,omitempty"`
	Valid     int     `json:"valid_schedules"`
	Excluded  int     `json:"excluded_schedules"`
}

func printJSON(w io.Writer, r *inventory.Result) error {
	rj := resultJSON{
		Outcome:   string(r.Outcome),
		Remaining: r.Remaining.Value.String(),
		Consumed:  r.Consumed.Value.String(),
		Valid:     r.ValidSchedules,
		Excluded:  len(r.Excluded),
	}
	if r.Date != nil {
		d := r.Date.String()
		rj.Date = &d
	}
	if r.Horizon != nil {
		h := r.Horizon.String()
		rj.Horizon = &h
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rj)
}

func printResult(w io.Writer, r *inventory.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	date := "none"
	if r.Date != nil {
		date = r.Date.String()
	}
	fmt.Fprintf(tw, "Last satisfied day:\t%s\n", date)
	fmt.Fprintf(tw, "Outcome:\t%s\n", r.Outcome)
	fmt.Fprintf(tw, "Consumed:\t%s\n", r.Consumed)
	fmt.Fprintf(tw, "Remaining:\t%s\n", r.Remaining)
	if r.Horizon != nil {
		fmt.Fprintf(tw, "Schedules end:\t%s\n", r.Horizon)
	}
	if !r.Window.Start.IsZero() {
		fmt.Fprintf(tw, "Simulated:\t%s (%d days)\n", r.Window, r.Window.Days())
	}
	fmt.Fprintf(tw, "Schedules:\t%d valid, %d excluded\n", r.ValidSchedules, len(r.Excluded))
	for _, x := range r.Excluded {
		fmt.Fprintf(tw, "  #%d\t%v\n", x.Index, x.Reason)
	}
	return tw.Flush()
}
