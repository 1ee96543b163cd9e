package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"filesort/internal/api"
	"filesort/internal/config"
	"filesort/internal/ipc"
	"filesort/internal/preflight"
	"filesort/internal/queueaccess"
)

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	SocketPath string
	ConfigPath string
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
	StartStateRequested      StartState = "start_requested"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State    StartState
	Launched bool
	Message  string
}

// Launch starts a detached filesort daemon process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"daemon"}
	if socket := strings.TrimSpace(opts.SocketPath); socket != "" {
		args = append(args, "--socket", socket)
	}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for IPC socket availability and returns a connected client.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for daemon")
	}
	return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// EnsureStarted launches the daemon when needed and enables its scheduler.
func EnsureStarted(socketPath, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	client, err := ipc.Dial(socketPath)
	launched := false
	if err != nil {
		if launchErr := Launch(executablePath, opts); launchErr != nil {
			return StartResult{}, launchErr
		}
		client, err = WaitForClient(socketPath, waitTimeout)
		if err != nil {
			return StartResult{}, err
		}
		launched = true
	}
	defer client.Close()

	resp, err := client.Start()
	if err != nil {
		return StartResult{}, err
	}
	message := strings.TrimSpace(resp.Message)
	if resp.Started {
		return StartResult{State: StartStateStarted, Launched: launched, Message: message}, nil
	}
	if strings.EqualFold(message, "scheduler already running") {
		if launched {
			// The daemon enabled the scheduler itself at boot.
			status, statusErr := client.Status(context.Background())
			if statusErr == nil && status.Status != nil && status.Status.Scheduler != nil {
				message = fmt.Sprintf("Scheduler started: every %d minutes", status.Status.Scheduler.IntervalMinutes)
			}
			return StartResult{State: StartStateStarted, Launched: true, Message: message}, nil
		}
		return StartResult{State: StartStateAlreadyRunning, Message: message}, nil
	}
	if message == "" {
		message = "Start request sent"
	}
	return StartResult{State: StartStateRequested, Launched: launched, Message: message}, nil
}

// WaitForShutdown waits for daemon IPC to disappear.
func WaitForShutdown(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err != nil {
			if isDaemonUnavailable(err) {
				return nil
			}
			time.Sleep(200 * time.Millisecond)
			continue
		}
		_ = client.Close()
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("daemon did not stop: timeout waiting for shutdown")
}

// ProcessInfo returns whether daemon IPC is reachable and the daemon PID when available.
func ProcessInfo(socketPath string) (bool, int, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	defer client.Close()
	status, statusErr := client.Status(context.Background())
	if statusErr != nil {
		return true, 0, statusErr
	}
	pid := 0
	if status != nil && status.Status != nil {
		pid = status.Status.DaemonPID
	}
	return true, pid, nil
}

// ForceKillProcess sends SIGKILL to daemon process and cleans pid/lock files.
func ForceKillProcess(pidPath, lockPath string, fallbackPID int) (int, error) {
	pid := fallbackPID
	data, err := os.ReadFile(pidPath)
	if err == nil {
		pidStr := strings.TrimSpace(string(data))
		if pidStr != "" {
			if parsed, parseErr := strconv.Atoi(pidStr); parseErr == nil && parsed > 0 {
				pid = parsed
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("read daemon pid file %q: %w", pidPath, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("unable to determine daemon pid (pid file: %s)", pidPath)
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return 0, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	if err := os.Remove(pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove pid file %q: %w", pidPath, err)
	}
	if lockPath != "" {
		_ = os.Remove(lockPath)
	}
	return pid, nil
}

// ErrDaemonNotRunning indicates daemon IPC is unavailable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	ShutdownAcknowledged bool
	ForcedKill           bool
	PID                  int
}

// RestartResult captures stop/start outcomes for daemon restart.
type RestartResult struct {
	WasRunning bool
	Stop       StopResult
	Start      StartResult
}

// StopAndTerminate asks the daemon to exit and force-kills the process if it
// is still alive after gracePeriod.
func StopAndTerminate(socketPath string, cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return StopResult{}, ErrDaemonNotRunning
		}
		return StopResult{}, err
	}
	resp, err := client.Shutdown()
	_ = client.Close()
	if err != nil {
		return StopResult{}, err
	}
	result := StopResult{ShutdownAcknowledged: resp.Acknowledged, PID: resp.PID}

	_ = WaitForShutdown(socketPath, gracePeriod)
	alive, livePID, aliveErr := ProcessInfo(socketPath)
	if aliveErr != nil {
		alive = false
	}
	if !alive {
		return result, nil
	}
	if cfg == nil {
		return result, fmt.Errorf("daemon still running and configuration is unavailable")
	}

	currentPID := livePID
	if currentPID == 0 {
		currentPID = resp.PID
	}
	killedPID, killErr := ForceKillProcess(cfg.PIDPath(), cfg.LockPath(), currentPID)
	if killErr != nil {
		return result, fmt.Errorf("failed to stop daemon process: %w", killErr)
	}
	_ = os.Remove(socketPath)
	result.ForcedKill = true
	result.PID = killedPID
	return result, nil
}

// Restart stops the daemon if running, then ensures it is started.
func Restart(socketPath string, cfg *config.Config, executablePath string, opts LaunchOptions, stopGracePeriod, startWaitTimeout time.Duration) (RestartResult, error) {
	stopResult, stopErr := StopAndTerminate(socketPath, cfg, stopGracePeriod)
	if stopErr != nil && !errors.Is(stopErr, ErrDaemonNotRunning) {
		return RestartResult{}, stopErr
	}

	startResult, err := EnsureStarted(socketPath, executablePath, opts, startWaitTimeout)
	if err != nil {
		return RestartResult{}, err
	}

	return RestartResult{
		WasRunning: stopErr == nil,
		Stop:       stopResult,
		Start:      startResult,
	}, nil
}

// StatusSnapshot is the combined view rendered by `filesort status`.
type StatusSnapshot struct {
	DaemonRunning bool               `json:"daemonRunning"`
	Session       *api.SessionStatus `json:"session"`
	SystemChecks  []api.StatusLine   `json:"systemChecks"`
}

// BuildStatusSnapshot collects status from the daemon, falling back to the
// queue database when no daemon is reachable.
func BuildStatusSnapshot(ctx context.Context, socketPath string, cfg *config.Config) (*StatusSnapshot, error) {
	if cfg == nil {
		return nil, errors.New("configuration not available")
	}
	snapshot := &StatusSnapshot{}

	if client, err := ipc.Dial(socketPath); err == nil {
		res, statusErr := client.Status(ctx)
		_ = client.Close()
		if statusErr == nil && res != nil && res.Status != nil {
			snapshot.DaemonRunning = true
			snapshot.Session = res.Status
		}
	}

	if !snapshot.DaemonRunning {
		queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		status, err := offlineStatus(queryCtx, cfg)
		if err != nil {
			return nil, err
		}
		snapshot.Session = status
	}

	snapshot.SystemChecks = BuildSystemChecks(cfg, snapshot.DaemonRunning, snapshot.Session)
	return snapshot, nil
}

func offlineStatus(ctx context.Context, cfg *config.Config) (*api.SessionStatus, error) {
	handle, err := queueaccess.OpenLocal(cfg, "")
	if err != nil {
		return nil, err
	}
	defer handle.Close()
	res, err := handle.Access.Status(ctx)
	if err != nil {
		return nil, err
	}
	return res.Status, nil
}

func isDaemonUnavailable(err error) bool {
	return os.IsNotExist(err) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

// BuildSystemChecks resolves status lines that combine runtime state and config checks.
func BuildSystemChecks(cfg *config.Config, daemonRunning bool, status *api.SessionStatus) []api.StatusLine {
	lines := make([]api.StatusLine, 0, 6)
	if daemonRunning {
		detail := "Running"
		if status != nil && status.DaemonPID > 0 {
			detail = fmt.Sprintf("Running (pid %d)", status.DaemonPID)
		}
		lines = append(lines, api.StatusLine{Label: "Daemon", Severity: "ok", Detail: detail})
	} else {
		lines = append(lines, api.StatusLine{Label: "Daemon", Severity: "warn", Detail: "Not running (run `filesort start`)"})
	}

	switch {
	case status != nil && status.Scheduler != nil && status.Scheduler.Running:
		lines = append(lines, api.StatusLine{Label: "Scheduler", Severity: "ok",
			Detail: fmt.Sprintf("Every %d minutes", status.Scheduler.IntervalMinutes)})
	case daemonRunning:
		lines = append(lines, api.StatusLine{Label: "Scheduler", Severity: "warn", Detail: "Stopped"})
	default:
		lines = append(lines, api.StatusLine{Label: "Scheduler", Severity: "info", Detail: "Inactive (daemon not running)"})
	}

	for _, check := range preflight.RunAll(cfg) {
		severity := "error"
		if check.Passed {
			severity = "ok"
		}
		lines = append(lines, api.StatusLine{Label: check.Name, Severity: severity, Detail: check.Detail})
	}

	if topic := cfg.Notifications.NtfyTopic; topic != "" {
		lines = append(lines, api.StatusLine{Label: "Notifications", Severity: "ok", Detail: "ntfy " + topic})
	} else {
		lines = append(lines, api.StatusLine{Label: "Notifications", Severity: "info", Detail: "Disabled"})
	}

	if status != nil && status.Backup != nil {
		lines = append(lines, api.StatusLine{Label: "Backup", Severity: "ok", Detail: status.Backup.Dir})
	} else {
		lines = append(lines, api.StatusLine{Label: "Backup", Severity: "info", Detail: "None (nothing to restore)"})
	}
	return lines
}
