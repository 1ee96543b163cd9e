// Package archive writes queued files into a single zip archive at a local
// path or an s3:// destination.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"filesort/internal/config"
	"filesort/internal/logging"
	"filesort/internal/services"
)

const component = "archive"

// Uploader stores a local file under bucket/key.
type Uploader interface {
	Upload(ctx context.Context, bucket, key, path string) error
}

// Result describes a written archive.
type Result struct {
	Dest    string
	Files   []string
	Skipped []string
	Bytes   int64
}

// Exporter writes archives. Remote destinations need an Uploader.
type Exporter struct {
	s3       config.S3
	uploader Uploader
	logger   *slog.Logger
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithUploader overrides the uploader used for s3:// destinations.
func WithUploader(uploader Uploader) Option {
	return func(e *Exporter) {
		e.uploader = uploader
	}
}

// NewExporter constructs an exporter for the given S3 settings.
func NewExporter(s3 config.S3, logger *slog.Logger, opts ...Option) *Exporter {
	e := &Exporter{s3: s3, logger: logging.NewComponentLogger(logger, component)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes every extant file into a new zip at dest using basenames only.
func (e *Exporter) Export(ctx context.Context, files []string, dest string) (Result, error) {
	dest = strings.TrimSpace(dest)
	if len(files) == 0 {
		return Result{}, services.UserInput(component, "export", "no files selected")
	}
	if dest == "" {
		return Result{}, services.UserInput(component, "export", "no destination chosen")
	}
	logger := logging.WithContext(ctx, e.logger)

	bucket, key, remote, err := ParseS3URL(dest)
	if err != nil {
		return Result{}, services.Wrap(services.ErrUserInput, component, "export", err.Error(), nil)
	}

	target := dest
	if remote {
		tmp, err := os.CreateTemp("", "filesort-export-*.zip")
		if err != nil {
			return Result{}, services.Wrap(services.ErrFileIO, component, "export", "create temporary archive", err)
		}
		target = tmp.Name()
		_ = tmp.Close()
		defer os.Remove(target)
	} else if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, services.Wrap(services.ErrFileIO, component, "export", "create destination directory", err)
		}
	}

	result, err := writeZip(target, files)
	if err != nil {
		return Result{}, services.Wrap(services.ErrFileIO, component, "export", "write archive", err)
	}
	result.Dest = dest

	if remote {
		uploader, err := e.remote()
		if err != nil {
			return Result{}, services.Wrap(services.ErrConfiguration, component, "export", "configure s3 upload", err)
		}
		if err := uploader.Upload(ctx, bucket, key, target); err != nil {
			return Result{}, services.Wrap(services.ErrFileIO, component, "export", "upload archive", err)
		}
	}

	logger.Info("archive written",
		logging.Destination(dest),
		logging.Count(len(result.Files)),
		logging.Int64("bytes", result.Bytes),
		logging.EventType("export_written"),
	)
	return result, nil
}

func (e *Exporter) remote() (Uploader, error) {
	if e.uploader != nil {
		return e.uploader, nil
	}
	uploader, err := NewS3Uploader(e.s3)
	if err != nil {
		return nil, err
	}
	e.uploader = uploader
	return uploader, nil
}

func writeZip(target string, files []string) (Result, error) {
	out, err := os.Create(target)
	if err != nil {
		return Result{}, err
	}
	defer out.Close()

	var result Result
	zw := zip.NewWriter(out)
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			result.Skipped = append(result.Skipped, path)
			continue
		}
		if err := addFile(zw, path, info); err != nil {
			_ = zw.Close()
			return Result{}, fmt.Errorf("add %s: %w", filepath.Base(path), err)
		}
		result.Files = append(result.Files, path)
	}
	if err := zw.Close(); err != nil {
		return Result{}, err
	}
	if err := out.Close(); err != nil {
		return Result{}, err
	}
	if info, err := os.Stat(target); err == nil {
		result.Bytes = info.Size()
	}
	return result, nil
}

func addFile(zw *zip.Writer, path string, info os.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}
