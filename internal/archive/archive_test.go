package archive_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"filesort/internal/archive"
	"filesort/internal/config"
	"filesort/internal/logging"
	"filesort/internal/services"
	"filesort/internal/testsupport"
)

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(data)
	}
	return contents
}

func TestExportWritesFlattenedArchive(t *testing.T) {
	dir := t.TempDir()
	a := testsupport.WriteFile(t, filepath.Join(dir, "one", "a.txt"), "alpha")
	b := testsupport.WriteFile(t, filepath.Join(dir, "two", "b.jpg"), "bravo")
	missing := filepath.Join(dir, "gone.txt")
	dest := filepath.Join(dir, "out", "export.zip")

	exporter := archive.NewExporter(config.S3{}, logging.NewNop())
	result, err := exporter.Export(context.Background(), []string{a, missing, b}, dest)
	require.NoError(t, err)
	require.Equal(t, []string{a, b}, result.Files)
	require.Equal(t, []string{missing}, result.Skipped)
	require.Positive(t, result.Bytes)

	require.Equal(t, map[string]string{"a.txt": "alpha", "b.jpg": "bravo"}, readZip(t, dest))
}

func TestExportRequiresFilesAndDestination(t *testing.T) {
	exporter := archive.NewExporter(config.S3{}, nil)

	_, err := exporter.Export(context.Background(), nil, "/tmp/out.zip")
	require.ErrorIs(t, err, services.ErrUserInput)

	_, err = exporter.Export(context.Background(), []string{"/tmp/a"}, "  ")
	require.ErrorIs(t, err, services.ErrUserInput)
	require.Contains(t, err.Error(), "no destination chosen")
}

func TestExportSurfacesIOErrors(t *testing.T) {
	dir := t.TempDir()
	a := testsupport.WriteFile(t, filepath.Join(dir, "a.txt"), "alpha")
	blocker := testsupport.WriteFile(t, filepath.Join(dir, "blocker"), "file")

	exporter := archive.NewExporter(config.S3{}, nil)
	_, err := exporter.Export(context.Background(), []string{a}, filepath.Join(blocker, "out.zip"))
	require.ErrorIs(t, err, services.ErrFileIO)
}

type recordingUploader struct {
	bucket, key string
	contents    map[string]string
	t           *testing.T
}

func (u *recordingUploader) Upload(_ context.Context, bucket, key, path string) error {
	u.bucket, u.key = bucket, key
	u.contents = readZip(u.t, path)
	return nil
}

func TestExportToS3UsesUploader(t *testing.T) {
	dir := t.TempDir()
	a := testsupport.WriteFile(t, filepath.Join(dir, "a.txt"), "alpha")
	uploader := &recordingUploader{t: t}

	exporter := archive.NewExporter(config.S3{}, nil, archive.WithUploader(uploader))
	result, err := exporter.Export(context.Background(), []string{a}, "s3://backups/2024/files.zip")
	require.NoError(t, err)
	require.Equal(t, "s3://backups/2024/files.zip", result.Dest)
	require.Equal(t, "backups", uploader.bucket)
	require.Equal(t, "2024/files.zip", uploader.key)
	require.Equal(t, map[string]string{"a.txt": "alpha"}, uploader.contents)
}

func TestExportToS3WithoutEndpointFails(t *testing.T) {
	dir := t.TempDir()
	a := testsupport.WriteFile(t, filepath.Join(dir, "a.txt"), "alpha")

	exporter := archive.NewExporter(config.S3{}, nil)
	_, err := exporter.Export(context.Background(), []string{a}, "s3://bucket/key.zip")
	require.ErrorIs(t, err, services.ErrConfiguration)
}

func TestParseS3URL(t *testing.T) {
	bucket, key, remote, err := archive.ParseS3URL("s3://bucket/path/to/a.zip")
	require.NoError(t, err)
	require.True(t, remote)
	require.Equal(t, "bucket", bucket)
	require.Equal(t, "path/to/a.zip", key)

	_, _, remote, err = archive.ParseS3URL("/tmp/a.zip")
	require.NoError(t, err)
	require.False(t, remote)

	_, _, _, err = archive.ParseS3URL("s3://bucket-only")
	require.Error(t, err)
}

func TestNewS3UploaderValidatesSettings(t *testing.T) {
	_, err := archive.NewS3Uploader(config.S3{Endpoint: "localhost:9000"})
	require.Error(t, err)

	uploader, err := archive.NewS3Uploader(config.S3{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	require.NotNil(t, uploader)
}

func TestExportOverwritesExistingArchive(t *testing.T) {
	dir := t.TempDir()
	a := testsupport.WriteFile(t, filepath.Join(dir, "a.txt"), "alpha")
	dest := filepath.Join(dir, "export.zip")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	_, err := archive.NewExporter(config.S3{}, nil).Export(context.Background(), []string{a}, dest)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a.txt": "alpha"}, readZip(t, dest))
}
