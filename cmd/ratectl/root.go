package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const rootLongHelp = `ratectl prices stays and checks availability offline, from JSON
files shaped like the projection events the staydesk service consumes.`

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ratectl",
		Short:         "Offline rate quotes and availability checks",
		Long:          rootLongHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newQuoteCmd())
	root.AddCommand(newAvailabilityCmd())
	return root
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func warnf(w io.Writer, format string, args ...any) {
	label := color.New(color.FgYellow, color.Bold)
	label.Fprint(w, "WARNING")
	fmt.Fprintf(w, ": "+format+"\n", args...)
}

func cliLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
