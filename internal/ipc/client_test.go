package ipc_test

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"filesort/internal/api"
	"filesort/internal/ipc"
)

// recordingService captures requests as the daemon would receive them.
type recordingService struct {
	mu    sync.Mutex
	paths []string
	dest  string
}

func (s *recordingService) Add(req ipc.AddRequest, resp *api.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append([]string(nil), req.Paths...)
	*resp = *api.NewResult("add")
	return nil
}

func (s *recordingService) Export(req ipc.ExportRequest, resp *api.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dest = req.Dest
	*resp = *api.NewResult("export")
	return nil
}

func dialRecorder(t *testing.T) (*ipc.Client, *recordingService) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "rec.sock")
	listener, err := net.Listen("unix", socket)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC client test: %v", err)
		}
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	rec := &recordingService{}
	server := rpc.NewServer()
	if err := server.RegisterName("Filesort", rec); err != nil {
		t.Fatalf("register: %v", err)
	}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go server.ServeCodec(jsonrpc.NewServerCodec(conn))
		}
	}()

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, rec
}

func TestClientResolvesRelativePathsLocally(t *testing.T) {
	client, rec := dialRecorder(t)
	workDir := t.TempDir()
	t.Chdir(workDir)

	if _, err := client.AddFiles(t.Context(), []string{"invoice.pdf", "/abs/photo.jpg"}); err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if _, err := client.Export(t.Context(), "out.zip"); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	cwd, err := filepath.Abs(".")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	want := []string{filepath.Join(cwd, "invoice.pdf"), "/abs/photo.jpg"}
	if len(rec.paths) != 2 || rec.paths[0] != want[0] || rec.paths[1] != want[1] {
		t.Fatalf("daemon received %v, want %v", rec.paths, want)
	}
	if rec.dest != filepath.Join(cwd, "out.zip") {
		t.Fatalf("daemon received export dest %q", rec.dest)
	}
}

func TestClientKeepsRemoteAndBlankExportDest(t *testing.T) {
	client, rec := dialRecorder(t)

	if _, err := client.Export(t.Context(), "s3://bucket/archive.zip"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	rec.mu.Lock()
	got := rec.dest
	rec.mu.Unlock()
	if got != "s3://bucket/archive.zip" {
		t.Fatalf("remote dest rewritten to %q", got)
	}

	if _, err := client.Export(t.Context(), ""); err != nil {
		t.Fatalf("Export: %v", err)
	}
	rec.mu.Lock()
	got = rec.dest
	rec.mu.Unlock()
	if got != "" {
		t.Fatalf("blank dest rewritten to %q", got)
	}
}
