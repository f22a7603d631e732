package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nixlim/chatprint/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "chatprint",
	Short:         "Render multi-agent conversation transcripts in the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/chatprint/config.toml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chatprint: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config, or the default one,
// and reports warnings on stderr.
func loadConfig() (config.Config, error) {
	var (
		result *config.LoadResult
		err    error
	)
	if cfgPath != "" {
		result, err = config.LoadFrom(cfgPath)
	} else {
		result, err = config.Load()
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "chatprint: config warning: %s\n", w)
	}
	return result.Config, nil
}

// openInput returns the named file, or stdin for "" and "-".
func openInput(args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", args[0], err)
	}
	return f, args[0], nil
}
