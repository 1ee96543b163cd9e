package main

import (
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"filesort/internal/testsupport"
)

func TestPreviewOrganizeRestore(t *testing.T) {
	env := setupCLITestEnv(t, true)
	inbox := filepath.Join(env.baseDir, "inbox")
	invoice := testsupport.WriteFile(t, filepath.Join(inbox, "invoice.pdf"), "invoice")

	if _, _, err := runCLI(t, []string{"add", invoice}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, _, err := runCLI(t, []string{"preview"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	requireContains(t, out, "1 file(s) would be organized")
	requireContains(t, out, "[PREVIEW] invoice.pdf")

	out, _, err = runCLI(t, []string{"organize"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Organized 1 of 1 file(s)")
	if names := testsupport.ListNames(t, inbox); len(names) != 0 {
		t.Fatalf("expected inbox to hold only folders, got %v", names)
	}

	out, _, err = runCLI(t, []string{"restore", "--mode", "journal"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	requireContains(t, out, "Restored 1 file(s)")
	if names := testsupport.ListNames(t, inbox); len(names) != 1 || names[0] != "invoice.pdf" {
		t.Fatalf("expected invoice.pdf back in inbox, got %v", names)
	}

	if _, _, err := runCLI(t, []string{"restore"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected second restore to fail without a backup")
	}
}

func TestOrganizeEmptyQueueFails(t *testing.T) {
	env := setupCLITestEnv(t, true)

	_, _, err := runCLI(t, []string{"organize"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected organize with an empty queue to fail")
	}
	requireContains(t, err.Error(), "no files selected")
}

func TestDupesCommand(t *testing.T) {
	env := setupCLITestEnv(t, true)
	inbox := filepath.Join(env.baseDir, "inbox")
	first := testsupport.WriteFile(t, filepath.Join(inbox, "a.txt"), "same bytes")
	second := testsupport.WriteFile(t, filepath.Join(inbox, "b.txt"), "same bytes")
	other := testsupport.WriteFile(t, filepath.Join(inbox, "c.txt"), "different")

	out, _, err := runCLI(t, []string{"dupes"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("dupes on empty queue: %v", err)
	}
	requireContains(t, out, "No duplicates found.")

	if _, _, err := runCLI(t, []string{"add", first, second, other}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, _, err = runCLI(t, []string{"dupes"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("dupes: %v", err)
	}
	requireContains(t, out, "Duplicates found:")
	requireContains(t, out, "b.txt")
}

func TestExportCommand(t *testing.T) {
	env := setupCLITestEnv(t, true)
	file := testsupport.WriteFile(t, filepath.Join(env.baseDir, "inbox", "notes.txt"), "notes")
	if _, _, err := runCLI(t, []string{"add", file}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, _, err := runCLI(t, []string{"export"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected export without a destination to fail")
	}

	dest := filepath.Join(env.baseDir, "out", "bundle.zip")
	out, _, err := runCLI(t, []string{"export", dest}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Exported 1 file(s) to "+dest)

	reader, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != 1 || reader.File[0].Name != "notes.txt" {
		t.Fatalf("unexpected archive contents %v", reader.File)
	}
}
