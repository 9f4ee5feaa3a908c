package overlay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type blockingDismisser struct {
	called chan string
}

func (b *blockingDismisser) CloseSystemWindows(ctx context.Context, reason string) error {
	b.called <- reason
	select {} // never returns, ignores ctx
}

type failingDismisser struct{}

func (failingDismisser) CloseSystemWindows(ctx context.Context, reason string) error {
	return errors.New("no panel service")
}

func TestDismissBestEffortReturnsAfterTimeout(t *testing.T) {
	d := &blockingDismisser{called: make(chan string, 1)}

	start := time.Now()
	DismissBestEffort(context.Background(), d, ReasonScreenshot, 50*time.Millisecond, zerolog.Nop())
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("expected dismissal to give up near the timeout, took %s", elapsed)
	}
	if reason := <-d.called; reason != ReasonScreenshot {
		t.Errorf("expected reason %q, got %q", ReasonScreenshot, reason)
	}
}

func TestDismissBestEffortSwallowsErrors(t *testing.T) {
	// Must not panic or block.
	DismissBestEffort(context.Background(), failingDismisser{}, ReasonScreenshot, time.Second, zerolog.Nop())
	DismissBestEffort(context.Background(), nil, ReasonScreenshot, time.Second, zerolog.Nop())
}

func TestNewCommandEmptyIsNoop(t *testing.T) {
	d, err := NewCommand("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := d.(Noop); !ok {
		t.Errorf("expected Noop, got %T", d)
	}
}

func TestNewCommandSplitsQuotedArgs(t *testing.T) {
	d, err := NewCommand(`dbus-send --dest="org.example Panel" close`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := d.(*Command)
	if !ok {
		t.Fatalf("expected *Command, got %T", d)
	}
	want := []string{"dbus-send", "--dest=org.example Panel", "close"}
	if len(c.argv) != len(want) {
		t.Fatalf("expected %v, got %v", want, c.argv)
	}
	for i := range want {
		if c.argv[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], c.argv[i])
		}
	}
}

func TestNewCommandRejectsUnterminatedQuote(t *testing.T) {
	if _, err := NewCommand(`close "panel`); err == nil {
		t.Error("expected error for unterminated quote")
	}
}
