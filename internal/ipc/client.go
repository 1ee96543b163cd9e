package ipc

import (
	"context"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"path/filepath"
	"strings"
	"time"

	"filesort/internal/api"
	"filesort/internal/archive"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// result performs a session call. A failed result is returned together with
// the error it describes.
func (c *Client) result(method string, req any) (*api.Result, error) {
	var resp api.Result
	if err := c.client.Call(serviceName+"."+method, req, &resp); err != nil {
		return nil, err
	}
	return &resp, resp.Err()
}

// AddFiles queues files on the daemon. Relative paths are resolved against
// the caller's working directory, not the daemon's.
func (c *Client) AddFiles(_ context.Context, paths []string) (*api.Result, error) {
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		resolved = append(resolved, absolutePath(path))
	}
	return c.result("Add", AddRequest{Paths: resolved})
}

// ClearQueue empties the queue.
func (c *Client) ClearQueue(context.Context) (*api.Result, error) {
	return c.result("Clear", Empty{})
}

// Queue lists queued files.
func (c *Client) Queue(context.Context) (*api.Result, error) {
	return c.result("Queue", Empty{})
}

// Status retrieves session, scheduler and process status.
func (c *Client) Status(context.Context) (*api.Result, error) {
	return c.result("Status", Empty{})
}

// Organize runs a real organize pass.
func (c *Client) Organize(context.Context) (*api.Result, error) {
	return c.result("Organize", Empty{})
}

// Preview reports the organize plan.
func (c *Client) Preview(context.Context) (*api.Result, error) {
	return c.result("Preview", Empty{})
}

// Restore reverts the last organize run.
func (c *Client) Restore(_ context.Context, mode string) (*api.Result, error) {
	return c.result("Restore", RestoreRequest{Mode: mode})
}

// FindDuplicates reports duplicate queued files.
func (c *Client) FindDuplicates(context.Context) (*api.Result, error) {
	return c.result("Dupes", Empty{})
}

// Export writes the queue into a zip archive.
func (c *Client) Export(_ context.Context, dest string) (*api.Result, error) {
	if _, _, remote, _ := archive.ParseS3URL(dest); !remote {
		dest = absolutePath(dest)
	}
	return c.result("Export", ExportRequest{Dest: dest})
}

// absolutePath resolves path in the client process. Blank paths are passed
// through so the daemon reports them.
func absolutePath(path string) string {
	if strings.TrimSpace(path) == "" || filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// Start enables the daemon scheduler.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call(serviceName+".Start", Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop disables the daemon scheduler.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call(serviceName+".Stop", Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon process to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.client.Call(serviceName+".Shutdown", Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification asks the daemon to send a test notification.
func (c *Client) TestNotification() (*TestNotifyResponse, error) {
	var resp TestNotifyResponse
	if err := c.client.Call(serviceName+".TestNotify", Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call(serviceName+".DatabaseHealth", Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail reads lines from the daemon log.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call(serviceName+".LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
