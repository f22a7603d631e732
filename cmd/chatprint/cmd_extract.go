package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nixlim/chatprint/internal/codeblock"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the code blocks found in a message as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, name, err := openInput(args)
		if err != nil {
			return err
		}
		defer in.Close()

		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}

		blocks := codeblock.Extract(string(data))
		if blocks == nil {
			blocks = []codeblock.Block{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(blocks)
	},
}
