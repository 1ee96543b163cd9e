package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filesort/internal/api"
	"filesort/internal/daemonctl"
	"filesort/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the filesort daemon and its organize scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}
			printStartResult(stdout, result, "Daemon started")
			return nil
		},
	}

	pauseCmd := &cobra.Command{
		Use:   "pause",
		Short: "Stop the organize scheduler but keep the daemon running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(cmd.OutOrStdout(), "Scheduler stopped")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Scheduler was not running")
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the filesort daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.ShutdownAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the filesort daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}
			printStartResult(stdout, result.Start, "Daemon restarted")
			return nil
		},
	}

	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, scheduler, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), ctx.configValue())
			if err != nil {
				return err
			}
			if statusJSON {
				return writeJSON(cmd, snapshot)
			}
			renderStatus(cmd.OutOrStdout(), snapshot, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status as JSON")

	return []*cobra.Command{startCmd, pauseCmd, stopCmd, restartCmd, statusCmd}
}

func printStartResult(out io.Writer, result daemonctl.StartResult, fallback string) {
	message := strings.TrimSpace(result.Message)
	switch result.State {
	case daemonctl.StartStateStarted:
		if message == "" {
			message = fallback
		}
		fmt.Fprintln(out, message)
	case daemonctl.StartStateAlreadyRunning:
		fmt.Fprintln(out, "Daemon already running")
	case daemonctl.StartStateRequested:
		if message == "" {
			message = "Start request sent"
		}
		fmt.Fprintln(out, message)
	}
}

func renderStatus(out io.Writer, snapshot *daemonctl.StatusSnapshot, colorize bool) {
	for _, line := range renderSectionHeader("System Status", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range snapshot.SystemChecks {
		fmt.Fprintln(out, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
	}
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Queue Status", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range sessionStatusLines(snapshot.Session, time.Now(), colorize) {
		fmt.Fprintln(out, line)
	}
}

func sessionStatusLines(status *api.SessionStatus, now time.Time, colorize bool) []string {
	if status == nil {
		return []string{renderStatusLine("Queue", statusInfo, "Unknown", colorize)}
	}
	lines := make([]string, 0, 4)
	queueKind := statusInfo
	if status.QueuedFiles > 0 {
		queueKind = statusOK
	}
	lines = append(lines, renderStatusLine("Queue", queueKind, fmt.Sprintf("%d file(s) in queue", status.QueuedFiles), colorize))

	if run := status.LastRun; run != nil {
		kind := statusOK
		if run.Failed > 0 {
			kind = statusWarn
		}
		detail := fmt.Sprintf("%d moved, %d failed (%s)", run.Moved, run.Failed, run.Trigger)
		if started := api.ParseTime(run.StartedAt); !started.IsZero() {
			detail += ", " + humanize.RelTime(started, now, "ago", "from now")
		}
		lines = append(lines, renderStatusLine("Last run", kind, detail, colorize))
	} else {
		lines = append(lines, renderStatusLine("Last run", statusInfo, "Never", colorize))
	}

	if sched := status.Scheduler; sched != nil {
		if next := api.ParseTime(sched.NextRun); sched.Running && !next.IsZero() {
			lines = append(lines, renderStatusLine("Next run", statusInfo, humanize.RelTime(next, now, "ago", "from now"), colorize))
		}
		if sched.LastError != "" {
			lines = append(lines, renderStatusLine("Scheduler error", statusError, sched.LastError, colorize))
		} else if sched.LastResult != "" {
			lines = append(lines, renderStatusLine("Last tick", statusInfo, sched.LastResult, colorize))
		}
	}
	if status.QueueDBPath != "" {
		lines = append(lines, renderStatusLine("Database", statusInfo, status.QueueDBPath, colorize))
	}
	return lines
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if path := ctx.configPath(); path != "" {
		opts.ConfigPath = path
	}
	return opts
}
