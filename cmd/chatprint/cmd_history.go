package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nixlim/chatprint/internal/storage"
	"github.com/nixlim/chatprint/internal/transcript"
	"github.com/nixlim/chatprint/internal/tui"
)

var historyFlags struct {
	limit   int
	pager   bool
	archive string
}

func init() {
	rootCmd.AddCommand(historyCmd)
	f := historyCmd.Flags()
	f.IntVar(&historyFlags.limit, "limit", 20, "maximum number of runs to list")
	f.BoolVar(&historyFlags.pager, "pager", false, "open the archived run in a scrollable pager")
	f.StringVar(&historyFlags.archive, "archive-db", "", "SQLite archive to read (default from config)")
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List archived runs, or replay one of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if historyFlags.archive != "" {
			cfg.Storage.DBPath = historyFlags.archive
		}

		archive, err := storage.Open(cmd.Context(), cfg.Storage)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		if archive == nil {
			return errors.New("no archive configured; set storage.db_path or pass --archive-db")
		}
		defer archive.Close()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			runs, err := archive.ListRuns(cmd.Context(), historyFlags.limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No archived runs")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%-6d %s  %5d %s  %s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.MessageCount, pluralize(r.MessageCount, "message"), r.Source)
			}
			return nil
		}

		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		entries, err := archive.Entries(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("run %d not found or empty", runID)
		}

		if !historyFlags.pager {
			for _, e := range entries {
				if _, err := io.WriteString(out, e.Output); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return nil
		}

		rb := transcript.NewRingBuffer(len(entries))
		for _, e := range entries {
			rb.Add(e)
		}
		log.SetOutput(io.Discard)
		model := tui.NewModel(
			tui.WithHistory(rb),
			tui.WithTitle(fmt.Sprintf("run %d", runID)),
		)
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
