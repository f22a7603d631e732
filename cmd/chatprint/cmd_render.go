package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/nixlim/chatprint/internal/config"
	"github.com/nixlim/chatprint/internal/storage"
	"github.com/nixlim/chatprint/internal/transcript"
	"github.com/nixlim/chatprint/internal/tui"
)

type renderOptions struct {
	debug    bool
	plain    bool
	pager    bool
	debugLog string
	format   string
	sender   string
	archive  string
}

var renderFlags renderOptions

func init() {
	rootCmd.AddCommand(renderCmd)
	f := renderCmd.Flags()
	f.BoolVar(&renderFlags.debug, "debug", false, "show banners, separators and diagnostic lines")
	f.BoolVar(&renderFlags.plain, "plain", false, "suppress colours and Markdown rendering")
	f.BoolVar(&renderFlags.pager, "pager", false, "open the rendered transcript in a scrollable pager")
	f.StringVar(&renderFlags.debugLog, "debug-log", "", "write a JSONL replay log to the given file")
	f.StringVar(&renderFlags.format, "format", "", "transcript format: jsonl or yaml (default from extension)")
	f.StringVar(&renderFlags.sender, "sender", "", "start the pager filtered to one sender")
	f.StringVar(&renderFlags.archive, "archive-db", "", "archive the rendered run in this SQLite database")
}

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a recorded conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debug") {
			cfg.Display.Debug = renderFlags.debug
		}
		if cmd.Flags().Changed("plain") {
			cfg.Display.SuppressRichDisplay = renderFlags.plain
		}
		if renderFlags.archive != "" {
			cfg.Storage.DBPath = renderFlags.archive
		}

		in, name, err := openInput(args)
		if err != nil {
			return err
		}
		defer in.Close()

		format := transcript.FormatFromPath(name)
		if renderFlags.format != "" {
			if format, err = transcript.ParseFormat(renderFlags.format); err != nil {
				return err
			}
		}
		records, err := transcript.Decode(in, format)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		opts := []transcript.PlayerOption{
			transcript.WithHistory(transcript.NewRingBuffer(cfg.Display.HistorySize)),
			transcript.WithColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile()),
		}
		if renderFlags.debugLog != "" {
			debugFile, err := os.OpenFile(renderFlags.debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open debug log %q: %w", renderFlags.debugLog, err)
			}
			defer debugFile.Close()
			opts = append(opts, transcript.WithLogger(transcript.NewFileLogger(debugFile)))
		}
		player := transcript.NewPlayer(cfg.Policy(), opts...)

		if !renderFlags.pager {
			playErr := player.Play(records, cmd.OutOrStdout())
			return errors.Join(playErr, archiveRun(cmd.Context(), cfg.Storage, name, player.Entries()))
		}

		playErr := player.Play(records, nil)
		if err := archiveRun(cmd.Context(), cfg.Storage, name, player.Entries()); err != nil {
			return errors.Join(playErr, err)
		}

		log.SetOutput(io.Discard)
		model := tui.NewModel(
			tui.WithHistory(player.History()),
			tui.WithTitle(name),
			tui.WithSender(renderFlags.sender),
		)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return err
		}
		return playErr
	},
}

// archiveRun saves every rendered entry when an archive is configured.
func archiveRun(ctx context.Context, cfg config.StorageConfig, source string, entries []transcript.Entry) error {
	archive, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	if archive == nil {
		return nil
	}
	defer archive.Close()

	if _, err := archive.SaveRun(ctx, source, entries); err != nil {
		return fmt.Errorf("archiving run: %w", err)
	}
	return nil
}
