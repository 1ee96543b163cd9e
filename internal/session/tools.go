package session

import (
	"context"
	"fmt"

	"filesort/internal/api"
	"filesort/internal/services"
)

// FindDuplicates reports queued files whose content matches an earlier entry.
func (s *Session) FindDuplicates(ctx context.Context) (*api.Result, error) {
	const op = "dupes"
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = withOperation(ctx, op)

	paths, err := s.queuedPaths(ctx, op)
	if err != nil {
		return s.fail(op, err)
	}
	found, err := s.finder.Find(ctx, paths)
	if err != nil {
		return s.fail(op, services.Wrap(services.ErrState, component, op, "scan queue", err))
	}

	res := api.NewResult(op)
	api.ApplyDuplicates(res, found)
	if len(found.Duplicates) == 0 {
		res.Message = "No duplicates found."
		return res, nil
	}
	res.Message = "Duplicates found:"
	res.Lines = found.Names()
	return res, nil
}

// Export writes the queued files into a zip archive at dest.
func (s *Session) Export(ctx context.Context, dest string) (*api.Result, error) {
	const op = "export"
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = withOperation(ctx, op)

	paths, err := s.queuedPaths(ctx, op)
	if err != nil {
		return s.fail(op, err)
	}
	written, err := s.exporter.Export(ctx, paths, dest)
	if err != nil {
		return s.fail(op, err)
	}

	res := api.NewResult(op)
	res.Total = len(written.Files)
	for _, path := range written.Skipped {
		res.Skipped = append(res.Skipped, api.FileSkip{Path: path, Reason: "file no longer exists"})
	}
	res.Message = fmt.Sprintf("Exported %d file(s) to %s", len(written.Files), written.Dest)
	return res, nil
}
