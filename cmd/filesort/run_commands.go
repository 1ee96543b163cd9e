package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filesort/internal/queueaccess"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Add files to the organize queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(ops queueaccess.Access) error {
				res, err := ops.AddFiles(cmd.Context(), args)
				return printResult(cmd, res, err, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the result as JSON")
	return cmd
}

func newRunCommands(ctx *commandContext) []*cobra.Command {
	var organizeJSON bool
	organizeCmd := &cobra.Command{
		Use:     "organize",
		Aliases: []string{"run"},
		Short:   "Back up queued files and move them into category and date folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(ops queueaccess.Access) error {
				res, err := ops.Organize(cmd.Context())
				return printResult(cmd, res, err, organizeJSON)
			})
		},
	}
	organizeCmd.Flags().BoolVar(&organizeJSON, "json", false, "Output the result as JSON")

	var previewJSON bool
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Show where queued files would be moved without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(ops queueaccess.Access) error {
				res, err := ops.Preview(cmd.Context())
				return printResult(cmd, res, err, previewJSON)
			})
		},
	}
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "Output the result as JSON")

	var restoreMode string
	var restoreJSON bool
	restoreCmd := &cobra.Command{
		Use:   "restore",
		Short: "Undo the last organize run from its backup",
		Long: "Undo the last organize run from its backup.\n\n" +
			"The journal mode puts each file of the last run back where it was queued from,\n" +
			"restoring its backup copy when that copy is intact and moving the organized\n" +
			"file back otherwise.\n" +
			"The reset mode moves every backup file into the organized folder and deletes\n" +
			"every category folder there, including files the last run did not create.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(ops queueaccess.Access) error {
				res, err := ops.Restore(cmd.Context(), strings.TrimSpace(restoreMode))
				return printResult(cmd, res, err, restoreJSON)
			})
		},
	}
	restoreCmd.Flags().StringVar(&restoreMode, "mode", "", "Restore mode: journal or reset (defaults to organize.restore_mode)")
	restoreCmd.Flags().BoolVar(&restoreJSON, "json", false, "Output the result as JSON")

	var dupesJSON bool
	dupesCmd := &cobra.Command{
		Use:     "dupes",
		Aliases: []string{"duplicates"},
		Short:   "Find queued files with identical content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(ops queueaccess.Access) error {
				res, err := ops.FindDuplicates(cmd.Context())
				if err != nil || dupesJSON || len(res.Duplicates) == 0 {
					return printResult(cmd, res, err, dupesJSON)
				}
				out := cmd.OutOrStdout()
				if res.Message != "" {
					fmt.Fprintln(out, res.Message)
				}
				rows := make([][]string, 0, len(res.Duplicates))
				for _, dup := range res.Duplicates {
					rows = append(rows, []string{dup.Name, dup.Original, shortDigest(dup.Digest)})
				}
				columns := []tableColumn{
					{Header: "Duplicate"},
					{Header: "Matches", MaxWidth: 60},
					{Header: "SHA-256"},
				}
				fmt.Fprint(out, renderTable(columns, rows, ""))
				return nil
			})
		},
	}
	dupesCmd.Flags().BoolVar(&dupesJSON, "json", false, "Output the result as JSON")

	var exportJSON bool
	exportCmd := &cobra.Command{
		Use:   "export <dest>",
		Short: "Write queued files into a zip archive (local path or s3://bucket/key)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := ""
			if len(args) == 1 {
				dest = strings.TrimSpace(args[0])
			}
			return ctx.withSession(func(ops queueaccess.Access) error {
				res, err := ops.Export(cmd.Context(), dest)
				return printResult(cmd, res, err, exportJSON)
			})
		},
	}
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "Output the result as JSON")

	return []*cobra.Command{organizeCmd, previewCmd, restoreCmd, dupesCmd, exportCmd}
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
