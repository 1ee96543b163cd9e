package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"filesort/internal/api"
	"filesort/internal/daemon"
	"filesort/internal/logging"
	"filesort/internal/logs"
	"filesort/internal/scheduler"
	"filesort/internal/services"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName(serviceName, srv); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun filesort stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

// reply copies a session result into resp. Classified failures travel inside
// the result; only unclassified errors become RPC errors.
func (s *service) reply(resp *api.Result, res *api.Result, err error) error {
	if res != nil {
		*resp = *res
		return nil
	}
	if err != nil {
		return err
	}
	return errors.New("operation returned no result")
}

func (s *service) call(operation string) context.Context {
	ctx := services.WithOperation(s.ctx, operation)
	s.logger.Debug("ipc request", logging.String(logging.FieldOperation, operation))
	return ctx
}

func (s *service) Add(req AddRequest, resp *api.Result) error {
	res, err := s.daemon.Session().AddFiles(s.call("add"), req.Paths)
	return s.reply(resp, res, err)
}

func (s *service) Clear(_ Empty, resp *api.Result) error {
	res, err := s.daemon.Session().ClearQueue(s.call("clear"))
	return s.reply(resp, res, err)
}

func (s *service) Queue(_ Empty, resp *api.Result) error {
	res, err := s.daemon.Session().Queue(s.call("queue"))
	return s.reply(resp, res, err)
}

func (s *service) Status(_ Empty, resp *api.Result) error {
	res, err := s.daemon.Status(s.call("status"))
	return s.reply(resp, res, err)
}

func (s *service) Organize(_ Empty, resp *api.Result) error {
	res, err := s.daemon.Session().Organize(s.call("organize"))
	return s.reply(resp, res, err)
}

func (s *service) Preview(_ Empty, resp *api.Result) error {
	res, err := s.daemon.Session().Preview(s.call("preview"))
	return s.reply(resp, res, err)
}

func (s *service) Restore(req RestoreRequest, resp *api.Result) error {
	res, err := s.daemon.Session().Restore(s.call("restore"), req.Mode)
	return s.reply(resp, res, err)
}

func (s *service) Dupes(_ Empty, resp *api.Result) error {
	res, err := s.daemon.Session().FindDuplicates(s.call("dupes"))
	return s.reply(resp, res, err)
}

func (s *service) Export(req ExportRequest, resp *api.Result) error {
	res, err := s.daemon.Session().Export(s.call("export"), req.Dest)
	return s.reply(resp, res, err)
}

func (s *service) Start(_ Empty, resp *StartResponse) error {
	msg, err := s.daemon.Start(s.ctx)
	if err != nil {
		resp.Started = false
		resp.Message = err.Error()
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			resp.Message = "scheduler already running"
		}
		return nil
	}
	resp.Started = true
	resp.Message = msg
	s.logger.Info("scheduler started via IPC", logging.EventType("scheduler_start_requested"))
	return nil
}

func (s *service) Stop(_ Empty, resp *StopResponse) error {
	resp.Stopped = s.daemon.Running()
	s.daemon.Stop()
	s.logger.Info("scheduler stopped via IPC", logging.EventType("scheduler_stop_requested"))
	return nil
}

func (s *service) Shutdown(_ Empty, resp *ShutdownResponse) error {
	resp.PID = os.Getpid()
	resp.Acknowledged = s.daemon.RequestShutdown()
	return nil
}

func (s *service) TestNotify(_ Empty, resp *TestNotifyResponse) error {
	sent, message, err := s.daemon.TestNotification(s.call("test-notify"))
	if err != nil {
		return err
	}
	*resp = TestNotifyResponse{Sent: sent, Message: message}
	return nil
}

func (s *service) DatabaseHealth(_ Empty, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil {
		return err
	}
	*resp = DatabaseHealthResponse{
		DBPath:         health.DBPath,
		SchemaVersion:  health.SchemaVersion,
		QueuedFiles:    health.QueuedFiles,
		HasBackup:      health.HasBackup,
		IntegrityCheck: health.IntegrityCheck,
	}
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	path := s.daemon.LogPath()
	if path == "" {
		return errors.New("daemon log path unavailable")
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	result, err := logs.Tail(s.ctx, path, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
		Filter: req.Filter,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}
