package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"unhex/internal/ctxlog"
	"unhex/internal/db"
	"unhex/internal/rec"
)

func historyCmd(g *globalFlags) *cobra.Command {
	var (
		n   int
		all bool
	)

	c := &cobra.Command{
		Use:   "history",
		Short: "List recent file conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			defer rec.Error(&err)

			ctx, config, logCloser, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer ctxlog.Close(ctx, "log file", logCloser)

			if config.DB.File == "" {
				return fmt.Errorf("no history database configured, set db.file or --db")
			}

			db.Open(config.DB)
			defer ctxlog.Close(ctx, "db", db.Closer())

			var runs []db.Run
			if all {
				for run := range db.Runs() {
					runs = append(runs, run)
				}
			} else {
				runs, err = db.LastRuns(n)
				if err != nil {
					return err
				}
			}

			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	c.Flags().IntVarP(&n, "limit", "n", 10, "number of runs to show, newest first")
	c.Flags().BoolVar(&all, "all", false, "show every recorded run, oldest first")
	return c
}

func printRuns(w io.Writer, runs []db.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STARTED", "DURATION", "INPUT", "OUTPUT", "LINES", "FALLBACK", "INVALID", "ECHOED", "ERROR")

	for _, run := range runs {
		t.Row(
			strconv.FormatUint(run.ID, 10),
			run.Started.Local().Format(time.DateTime),
			run.Duration.Round(time.Millisecond).String(),
			run.Input,
			run.Output,
			strconv.Itoa(run.Stats.Lines),
			strconv.Itoa(run.Stats.Fallback),
			strconv.Itoa(run.Stats.Invalid),
			strconv.Itoa(run.Stats.Echoed),
			run.Error,
		)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
