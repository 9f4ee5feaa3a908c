// Package overlay dismisses system panels (notification shade, quick
// settings) that would otherwise end up in a recording.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
)

// ReasonScreenshot is passed to dismissers when the recording dialog opens.
const ReasonScreenshot = "screenshot"

var ErrTimeout = errors.New("overlay dismissal timed out")

// Dismisser closes any currently shown system windows.
type Dismisser interface {
	CloseSystemWindows(ctx context.Context, reason string) error
}

// Noop dismisses nothing.
type Noop struct{}

func (Noop) CloseSystemWindows(ctx context.Context, reason string) error {
	return nil
}

// Command runs an external program (for example "swaync-client --close-panel").
// The reason is exported to it as SCREENRECORD_DISMISS_REASON.
type Command struct {
	argv []string
}

// NewCommand splits line with shell quoting rules. An empty line yields a Noop.
func NewCommand(line string) (Dismisser, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("invalid dismiss command: %w", err)
	}
	if len(argv) == 0 {
		return Noop{}, nil
	}
	return &Command{argv: argv}, nil
}

func (c *Command) CloseSystemWindows(ctx context.Context, reason string) error {
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Env = append(cmd.Environ(), "SCREENRECORD_DISMISS_REASON="+reason)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ErrTimeout
		}
		return fmt.Errorf("dismiss command failed: %w", err)
	}
	return nil
}

// DismissBestEffort asks d to close system windows and waits at most timeout.
// Errors and timeouts are logged at debug level and otherwise ignored.
func DismissBestEffort(ctx context.Context, d Dismisser, reason string, timeout time.Duration, log zerolog.Logger) {
	if d == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.CloseSystemWindows(ctx, reason)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Debug().Err(err).Msg("Overlay dismissal failed")
		}
	case <-ctx.Done():
		log.Debug().Err(ErrTimeout).Dur("timeout", timeout).Msg("Overlay dismissal abandoned")
	}
}
