package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"filesort/internal/api"
	"filesort/internal/services"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders a session result. Results for outright failures carry
// nothing beyond the error, so only successful and partially failed batches
// print a body; the error is returned for the caller's exit status.
func printResult(cmd *cobra.Command, res *api.Result, err error, asJSON bool) error {
	if res == nil {
		return err
	}
	if asJSON {
		if encErr := writeJSON(cmd, res); encErr != nil {
			return encErr
		}
		return err
	}
	if !res.OK && res.Kind != services.KindFileIO {
		writeSkipped(cmd.OutOrStdout(), res.Skipped)
		return err
	}
	writeResultBody(cmd.OutOrStdout(), res)
	return err
}

func writeResultBody(out io.Writer, res *api.Result) {
	if res.Message != "" {
		fmt.Fprintln(out, res.Message)
	}
	for _, line := range res.Lines {
		fmt.Fprintf(out, "  %s\n", line)
	}
	writeSkipped(out, res.Skipped)
	for _, failure := range res.Failures {
		if failure.Stage != "" {
			fmt.Fprintf(out, "  failed %s (%s): %s\n", failure.Path, failure.Stage, failure.Error)
			continue
		}
		fmt.Fprintf(out, "  failed %s: %s\n", failure.Path, failure.Error)
	}
}

func writeSkipped(out io.Writer, skipped []api.FileSkip) {
	for _, skip := range skipped {
		fmt.Fprintf(out, "  skipped %s: %s\n", skip.Path, skip.Reason)
	}
}
