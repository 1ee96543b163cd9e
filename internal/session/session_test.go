package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"filesort/internal/config"
	"filesort/internal/logging"
	"filesort/internal/services"
	"filesort/internal/session"
	"filesort/internal/testsupport"
)

var fixedClock = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.Local)

func newSession(t *testing.T, opts ...testsupport.ConfigOption) (*session.Session, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	s, err := session.New(cfg, store, logging.NewNop(), session.WithClock(func() time.Time { return fixedClock }))
	require.NoError(t, err)
	return s, cfg
}

func inbox(t *testing.T) (string, []string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "inbox")
	return dir, []string{
		testsupport.WriteFile(t, filepath.Join(dir, "invoice_2024.pdf"), "invoice"),
		testsupport.WriteFile(t, filepath.Join(dir, "photo.jpg"), "photo"),
		testsupport.WriteFile(t, filepath.Join(dir, "photo copy.jpg"), "photo"),
	}
}

func TestAddFilesRejectsDirectoriesAndMissingPaths(t *testing.T) {
	s, _ := newSession(t)
	dir, files := inbox(t)
	ctx := context.Background()

	res, err := s.AddFiles(ctx, []string{files[0], dir, filepath.Join(dir, "nope.txt"), files[0]})
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, 1, res.Total)
	require.Equal(t, "1 file(s) in queue", res.Message)
	require.Len(t, res.Skipped, 2)
	require.Equal(t, "is a directory", res.Skipped[0].Reason)
	require.Equal(t, "does not exist", res.Skipped[1].Reason)

	res, err = s.AddFiles(ctx, []string{dir})
	require.ErrorIs(t, err, services.ErrUserInput)
	require.False(t, res.OK)
	require.Equal(t, services.KindUserInput, res.Kind)

	_, err = s.AddFiles(ctx, nil)
	require.ErrorIs(t, err, services.ErrUserInput)
}

func TestAddFilesMakesPathsAbsolute(t *testing.T) {
	s, _ := newSession(t)
	dir, _ := inbox(t)
	t.Chdir(dir)

	_, err := s.AddFiles(context.Background(), []string{"photo.jpg"})
	require.NoError(t, err)

	res, err := s.Queue(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Queue, 1)
	require.Equal(t, filepath.Join(dir, "photo.jpg"), res.Queue[0].Path)
}

func TestQueuePreservesOrderAndClears(t *testing.T) {
	s, _ := newSession(t)
	_, files := inbox(t)
	ctx := context.Background()

	_, err := s.AddFiles(ctx, []string{files[2], files[0]})
	require.NoError(t, err)
	_, err = s.AddFiles(ctx, []string{files[1], files[2]})
	require.NoError(t, err)

	res, err := s.Queue(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"photo copy.jpg", "invoice_2024.pdf", "photo.jpg"},
		[]string{res.Queue[0].Name, res.Queue[1].Name, res.Queue[2].Name})

	res, err = s.ClearQueue(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, res.Total)
	require.Equal(t, "0 file(s) in queue", res.Message)
}

func TestOrganizeEmptyQueueIsUserInput(t *testing.T) {
	s, cfg := newSession(t)

	res, err := s.Organize(context.Background())
	require.ErrorIs(t, err, services.ErrUserInput)
	require.False(t, res.OK)
	require.Contains(t, res.Message, "no files selected")
	require.NoDirExists(t, filepath.Join(testsupport.BaseDir(cfg), "inbox"))
}

func TestPreviewThenOrganizeThenRestore(t *testing.T) {
	s, _ := newSession(t)
	dir, files := inbox(t)
	ctx := context.Background()
	_, err := s.AddFiles(ctx, files)
	require.NoError(t, err)

	preview, err := s.Preview(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, preview.Total)
	require.Len(t, preview.Lines, 3)
	require.Contains(t, preview.Lines[0], "[PREVIEW] invoice_2024.pdf → "+filepath.Join(dir, "Documents"))
	require.ElementsMatch(t, []string{"invoice_2024.pdf", "photo.jpg", "photo copy.jpg"}, testsupport.ListNames(t, dir))

	again, err := s.Preview(ctx)
	require.NoError(t, err)
	require.Equal(t, preview.Lines, again.Lines)

	res, err := s.Organize(ctx)
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, "Organized 3 of 3 file(s). 3 file(s) in queue", res.Message)
	require.NotEmpty(t, res.RunID)

	status, err := s.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.Status.Backup)
	require.NotNil(t, status.Status.LastRun)
	require.Equal(t, 3, status.Status.LastRun.Moved)
	require.Equal(t, "manual", status.Status.LastRun.Trigger)

	restored, err := s.Restore(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "Restored 3 file(s)", restored.Message)
	require.ElementsMatch(t, []string{"invoice_2024.pdf", "photo.jpg", "photo copy.jpg"}, testsupport.ListNames(t, dir))

	_, err = s.Restore(ctx, "")
	require.ErrorIs(t, err, services.ErrState)
}

func TestPreviewTruncatesToLimit(t *testing.T) {
	s, _ := newSession(t, testsupport.WithPreviewLimit(2))
	_, files := inbox(t)
	ctx := context.Background()
	_, err := s.AddFiles(ctx, files)
	require.NoError(t, err)

	res, err := s.Preview(ctx)
	require.NoError(t, err)
	require.True(t, res.Truncated)
	require.Equal(t, 3, res.Total)
	require.Equal(t, "...and 1 more", res.Lines[2])
}

func TestClearAfterOrganizeDropsMovedEntries(t *testing.T) {
	s, _ := newSession(t, testsupport.WithClearAfterOrganize())
	_, files := inbox(t)
	ctx := context.Background()
	_, err := s.AddFiles(ctx, files)
	require.NoError(t, err)

	res, err := s.Organize(ctx)
	require.NoError(t, err)
	require.Contains(t, res.Message, "0 file(s) in queue")

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	require.Zero(t, pending)
}

func TestRunScheduledUsesScheduledTrigger(t *testing.T) {
	s, _ := newSession(t)
	_, files := inbox(t)
	ctx := context.Background()

	_, err := s.RunScheduled(ctx)
	require.ErrorIs(t, err, services.ErrUserInput)

	_, err = s.AddFiles(ctx, files[:1])
	require.NoError(t, err)
	summary, err := s.RunScheduled(ctx)
	require.NoError(t, err)
	require.Contains(t, summary, "Organized 1 of 1 file(s)")

	status, err := s.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, "scheduled", status.Status.LastRun.Trigger)
}

func TestFindDuplicates(t *testing.T) {
	s, _ := newSession(t)
	_, files := inbox(t)
	ctx := context.Background()

	res, err := s.FindDuplicates(ctx)
	require.NoError(t, err)
	require.Equal(t, "No duplicates found.", res.Message)

	_, err = s.AddFiles(ctx, files)
	require.NoError(t, err)
	res, err = s.FindDuplicates(ctx)
	require.NoError(t, err)
	require.Equal(t, "Duplicates found:", res.Message)
	require.Equal(t, []string{"photo copy.jpg"}, res.Lines)
	require.Equal(t, files[1], res.Duplicates[0].Original)
}

func TestExport(t *testing.T) {
	s, _ := newSession(t)
	dir, files := inbox(t)
	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "queue.zip")

	_, err := s.Export(ctx, dest)
	require.ErrorIs(t, err, services.ErrUserInput)

	_, err = s.AddFiles(ctx, files)
	require.NoError(t, err)

	res, err := s.Export(ctx, "")
	require.ErrorIs(t, err, services.ErrUserInput)
	require.Equal(t, services.KindUserInput, res.Kind)

	require.NoError(t, os.Remove(files[0]))
	res, err = s.Export(ctx, dest)
	require.NoError(t, err)
	require.Equal(t, "Exported 2 file(s) to "+dest, res.Message)
	require.Len(t, res.Skipped, 1)

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	require.Equal(t, "photo.jpg", zr.File[0].Name)
	require.DirExists(t, dir)
}

func TestOperationsAreSerialized(t *testing.T) {
	s, _ := newSession(t)
	_, files := inbox(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, len(files)*2)
	for _, path := range files {
		wg.Add(2)
		go func(p string) {
			defer wg.Done()
			_, err := s.AddFiles(ctx, []string{p})
			errs <- err
		}(path)
		go func() {
			defer wg.Done()
			_, err := s.Status(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.False(t, errors.Is(err, services.ErrState), "unexpected error %v", err)
	}

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	require.Equal(t, len(files), pending)
}
