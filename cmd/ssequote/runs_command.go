package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var runColumns = []column{
	{title: "Run"},
	{title: "Started"},
	{title: "Range"},
	{title: "Processed", right: true},
	{title: "Succeeded", right: true},
	{title: "Failed", right: true},
	{title: "Duration", right: true},
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recent batch runs, or the failures of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := ctx.ensureHistory(cmd.Context())
			if err != nil {
				return err
			}
			if ledger == nil {
				return errors.New("batch history is disabled (history.enabled = false)")
			}
			defer ctx.close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				runs, err := ledger.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No batch runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						fmt.Sprintf("%d-%d", run.From, run.To),
						strconv.Itoa(run.Processed),
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
						run.Duration().Round(time.Second).String(),
					})
				}
				r := newReport(false)
				r.table(runColumns, rows)
				fmt.Fprint(out, r.String())
				return nil
			}

			run, err := ledger.FindRun(cmd.Context(), args[0])
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("no batch run matches %q", args[0])
			}
			if err != nil {
				return err
			}
			failures, err := ledger.Failures(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Run %s: episodes %d-%d, %d succeeded, %d failed\n", run.ID, run.From, run.To, run.Succeeded, run.Failed)
			if len(failures) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(failures))
			for _, f := range failures {
				rows = append(rows, []string{strconv.Itoa(f.Episode), f.Kind, f.Message})
			}
			r := newReport(false)
			r.table(failureColumns, rows)
			fmt.Fprint(out, r.String())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}
