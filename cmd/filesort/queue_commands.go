package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filesort/internal/api"
	"filesort/internal/classify"
	"filesort/internal/config"
	"filesort/internal/ipc"
	"filesort/internal/queue"
	"filesort/internal/queueaccess"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the file queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List queued files in the order they were added",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(ops queueaccess.Access) error {
				res, err := ops.Queue(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					entries := res.Queue
					if entries == nil {
						entries = []api.QueueEntry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(res.Queue) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				fmt.Fprint(out, renderQueueTable(ctx.configValue(), res.Queue))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the queue as JSON")
	return cmd
}

func renderQueueTable(cfg *config.Config, entries []api.QueueEntry) string {
	classifier := classify.NewFromConfig(cfg)
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		size := "missing"
		if info, err := os.Stat(entry.Path); err == nil {
			size = humanize.IBytes(uint64(info.Size()))
		}
		added := ""
		if t := api.ParseTime(entry.AddedAt); !t.IsZero() {
			added = humanize.Time(t)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			entry.Name,
			classify.DisplayName(classifier.Classify(filepath.Ext(entry.Name))),
			size,
			added,
			filepath.Dir(entry.Path),
		})
	}
	columns := []tableColumn{
		{Header: "#", Align: alignRight},
		{Header: "Name", MaxWidth: 40},
		{Header: "Category"},
		{Header: "Size", Align: alignRight},
		{Header: "Added"},
		{Header: "Folder", MaxWidth: 50},
	}
	return renderTable(columns, rows, fmt.Sprintf("%d file(s) in queue", len(entries)))
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every file from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(ops queueaccess.Access) error {
				res, err := ops.ClearQueue(cmd.Context())
				return printResult(cmd, res, err, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the result as JSON")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check queue database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := queueHealth(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database path: %s\n", health.DBPath)
			fmt.Fprintf(out, "Schema version: %d\n", health.SchemaVersion)
			fmt.Fprintf(out, "Queued files: %d\n", health.QueuedFiles)
			fmt.Fprintf(out, "Backup recorded: %s\n", yesNo(health.HasBackup))
			fmt.Fprintf(out, "Integrity check: %s\n", yesNo(health.IntegrityCheck))
			return nil
		},
	}
}

func queueHealth(cmdCtx context.Context, ctx *commandContext) (*ipc.DatabaseHealthResponse, error) {
	if client, err := ipc.Dial(ctx.socketPath()); err == nil {
		defer client.Close()
		return client.DatabaseHealth()
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open queue database: %w", err)
	}
	defer store.Close()
	health, err := store.CheckHealth(cmdCtx)
	if err != nil {
		return nil, err
	}
	return &ipc.DatabaseHealthResponse{
		DBPath:         health.DBPath,
		SchemaVersion:  health.SchemaVersion,
		QueuedFiles:    health.QueuedFiles,
		HasBackup:      health.HasBackup,
		IntegrityCheck: health.IntegrityCheck,
	}, nil
}
