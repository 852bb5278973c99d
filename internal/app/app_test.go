package app

import (
	"context"
	"errors"
	"testing"

	"console-cli/internal/input"
	"console-cli/internal/prefs"
	"console-cli/internal/scrollback"
	"console-cli/internal/session"

	"github.com/google/go-cmp/cmp"
)

type failingStorage struct{ *prefs.MemoryStorage }

func (failingStorage) Set(string, []byte) error { return errors.New("read-only") }

// pressEnter 模拟一次 Enter：本帧按下，下一帧释放。
func pressEnter(t *testing.T, a *App, text string) FrameOutput {
	t.Helper()
	ctx := context.Background()
	a.Frame(ctx, FrameInput{Keys: input.NewSnapshot(input.KeyEnter), Input: text, Height: 10})
	return a.Frame(ctx, FrameInput{Keys: input.NewSnapshot(), Input: text, Height: 10})
}

func TestEnterReleaseSubmits(t *testing.T) {
	a := New(Options{})
	ctx := context.Background()

	out := a.Frame(ctx, FrameInput{Keys: input.NewSnapshot(input.KeyEnter), Input: "hello", Height: 10})
	if a.Log().Len() != 0 {
		t.Fatalf("submitted on press; want submit on release")
	}
	if !out.Delta.Pressed.Has(input.KeyEnter) {
		t.Fatalf("enter should be pressed")
	}

	out = a.Frame(ctx, FrameInput{Keys: input.NewSnapshot(), Input: "hello", Height: 10})
	if diff := cmp.Diff([]string{"hello"}, a.Log().Commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
	if out.Input != "" {
		t.Fatalf("input = %q, want cleared", out.Input)
	}
	if !out.Focus {
		t.Fatalf("expected refocus after submit")
	}
	want := []scrollback.Row{
		{Index: 0, Kind: scrollback.RowResponse, Text: session.StubReply},
		{Index: 1, Kind: scrollback.RowCommand, Text: "hello"},
	}
	if diff := cmp.Diff(want, out.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if out.Total != 2 {
		t.Fatalf("Total = %d, want 2", out.Total)
	}
}

func TestSubmitClicked(t *testing.T) {
	a := New(Options{})
	a.Frame(context.Background(), FrameInput{SubmitClicked: true, Input: "a", Height: 5})
	a.Frame(context.Background(), FrameInput{SubmitClicked: true, Input: "b", Height: 5})
	if got, err := a.View().RowAt(3); err != nil || got != "b" {
		t.Fatalf("RowAt(3) = %q, %v; want b", got, err)
	}
}

func TestWhitespaceCommandRejected(t *testing.T) {
	a := New(Options{})
	out := pressEnter(t, a, "   ")
	if !out.Rejected {
		t.Fatalf("expected rejection")
	}
	if a.Log().Len() != 0 {
		t.Fatalf("whitespace command reached the log")
	}
	if out.Input != "   " {
		t.Fatalf("input = %q, want kept", out.Input)
	}

	out = pressEnter(t, a, "  padded  ")
	if got := a.Log().Commands(); len(got) != 1 || got[0] != "  padded  " {
		t.Fatalf("commands = %q, want verbatim command", got)
	}
	if out.Rejected {
		t.Fatalf("non-empty command rejected")
	}
}

func TestRefocusConsumedAfterReport(t *testing.T) {
	a := New(Options{})
	ctx := context.Background()
	if out := a.Frame(ctx, FrameInput{Height: 3}); !out.Focus {
		t.Fatalf("first frame should request focus by default")
	}
	if out := a.Frame(ctx, FrameInput{Height: 3}); out.Focus {
		t.Fatalf("focus request should be consumed")
	}
}

func TestAutoScrollFollowsAppends(t *testing.T) {
	a := New(Options{})
	for i := 0; i < 20; i++ {
		pressEnter(t, a, "x")
	}
	out := a.Frame(context.Background(), FrameInput{Height: 10})
	if out.First != 30 || len(out.Rows) != 10 || out.Rows[9].Index != 39 {
		t.Fatalf("first=%d rows=%d; want bottom window", out.First, len(out.Rows))
	}

	a.Viewport().ScrollUp(15, out.Total)
	out = a.Frame(context.Background(), FrameInput{Height: 10})
	if out.First != 15 {
		t.Fatalf("First after scroll up = %d, want 15", out.First)
	}

	out = pressEnter(t, a, "y")
	if out.First != 32 {
		t.Fatalf("First after append = %d, want 32 (re-anchored)", out.First)
	}
}

func TestAsyncSubmitUsesPlaceholder(t *testing.T) {
	a := New(Options{Async: true, Processor: session.ProcessorFunc(func(_ context.Context, cmd string) (string, error) {
		return "done " + cmd, nil
	})})

	out := pressEnter(t, a, "slow")
	if out.Submitted == nil {
		t.Fatalf("expected ticket in async mode")
	}
	if !out.Pending {
		t.Fatalf("expected pending")
	}
	if out.Rows[0].Text != session.PendingPlaceholder {
		t.Fatalf("row 0 = %q, want placeholder", out.Rows[0].Text)
	}

	busy := pressEnter(t, a, "second")
	if !busy.Busy || busy.Input != "second" {
		t.Fatalf("expected busy with input kept, got busy=%v input=%q", busy.Busy, busy.Input)
	}

	if err := a.Complete(a.Execute(context.Background(), *out.Submitted)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	out = a.Frame(context.Background(), FrameInput{Input: "second", Height: 10})
	if out.Rows[0].Text != "done slow" || out.Pending {
		t.Fatalf("rows=%v pending=%v", out.Rows, out.Pending)
	}
}

func TestShutdownPersistsPreferences(t *testing.T) {
	store := prefs.NewMemoryStorage()
	a := New(Options{Gate: prefs.NewGate(store)})
	a.SetAutoScroll(false)
	a.Frame(context.Background(), FrameInput{Input: "draft", Height: 4})
	pressEnter(t, a, "sent")
	a.Frame(context.Background(), FrameInput{Input: "unsent", Height: 4})

	if err := a.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	b := New(Options{Gate: prefs.NewGate(store)})
	want := prefs.Preferences{UserInput: "unsent", AutoScroll: false, RefocusInput: false}
	if diff := cmp.Diff(want, b.Preferences()); diff != "" {
		t.Fatalf("restored prefs mismatch (-want +got):\n%s", diff)
	}
	if b.Log().Len() != 0 {
		t.Fatalf("session log must start empty")
	}
}

func TestShutdownAbandonsInFlight(t *testing.T) {
	a := New(Options{Async: true})
	pressEnter(t, a, "pending")
	if err := a.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if r, _ := a.Log().Response(0); r != session.CancelledPlaceholder {
		t.Fatalf("response = %q, want cancelled placeholder", r)
	}
}

func TestShutdownSurfacesWriteFailure(t *testing.T) {
	a := New(Options{Gate: prefs.NewGate(failingStorage{prefs.NewMemoryStorage()})})
	pressEnter(t, a, "still works")
	if err := a.Shutdown(); err == nil {
		t.Fatalf("expected save error")
	}
	if a.Log().Len() != 1 {
		t.Fatalf("session affected by save failure")
	}
}
