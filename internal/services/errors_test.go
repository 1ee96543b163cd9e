package services_test

import (
	"errors"
	"strings"
	"testing"

	"filesort/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrFileIO, "organizer", "move", "rename failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrFileIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"organizer", "move", "rename failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.UserInput("organizer", "run", "no files selected"), services.KindUserInput},
		{services.State("organizer", "restore", "no backup available"), services.KindState},
		{services.Wrap(services.ErrFileIO, "archive", "write", "", errors.New("disk full")), services.KindFileIO},
		{errors.New("plain"), services.KindInternal},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestMessageStripsMarker(t *testing.T) {
	err := services.UserInput("organizer", "run", "no files selected")
	if got := services.Message(err); got != "organizer: run: no files selected" {
		t.Fatalf("unexpected message %q", got)
	}
}
