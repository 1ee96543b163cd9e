package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"filesort/internal/ipc"
	"filesort/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var filter string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tail func(ipc.LogTailRequest) (*ipc.LogTailResponse, error)
			client, err := ipc.Dial(ctx.socketPath())
			if err == nil {
				defer client.Close()
				tail = client.LogTail
			} else {
				cfg, cfgErr := ctx.ensureConfig()
				if cfgErr != nil {
					return cfgErr
				}
				path := logs.CurrentLogPath(cfg.Paths.LogDir)
				tail = func(req ipc.LogTailRequest) (*ipc.LogTailResponse, error) {
					res, err := logs.Tail(cmd.Context(), path, logs.TailOptions{
						Offset: req.Offset,
						Limit:  req.Limit,
						Follow: req.Follow,
						Wait:   time.Duration(req.WaitMillis) * time.Millisecond,
						Filter: req.Filter,
					})
					if err != nil {
						return nil, err
					}
					return &ipc.LogTailResponse{Lines: res.Lines, Offset: res.Offset}, nil
				}
			}
			return streamLogs(cmd.Context(), cmd.OutOrStdout(), tail, lines, follow, filter)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&filter, "grep", "", "Only show lines containing this text (case-insensitive)")
	return cmd
}

func streamLogs(ctx context.Context, out io.Writer, tail func(ipc.LogTailRequest) (*ipc.LogTailResponse, error), lines int, follow bool, filter string) error {
	limit := max(lines, 0)
	offset := int64(-1)
	if limit == 0 {
		offset = 0
	}
	printed := false

	for {
		resp, err := tail(ipc.LogTailRequest{
			Offset:     offset,
			Limit:      limit,
			Follow:     follow,
			WaitMillis: 1000,
			Filter:     filter,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("tail logs: %w", err)
		}
		for _, line := range resp.Lines {
			fmt.Fprintln(out, line)
			printed = true
		}
		offset = resp.Offset
		limit = 0
		if !follow {
			if !printed {
				fmt.Fprintln(out, "No log entries available")
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}
