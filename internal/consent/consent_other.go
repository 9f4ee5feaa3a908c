//go:build !darwin

package consent

import (
	"context"
	"os"
	"runtime"
)

type hostProvider struct {
	getenv func(string) string
	goos   string
}

// New returns the consent provider for this platform.
func New() Provider {
	return hostProvider{getenv: os.Getenv, goos: runtime.GOOS}
}

func (hostProvider) CreateCaptureIntent() Intent {
	return NewIntent()
}

// Launch approves when there is a display session to capture. Without a
// desktop portal there is no separate consent prompt.
func (p hostProvider) Launch(ctx context.Context, intent Intent) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	display := p.display()
	if display == "" {
		return Result{Approved: false}, nil
	}
	return Result{
		Approved: true,
		Payload:  Payload{Grant: intent.ID, Display: display},
	}, nil
}

func (p hostProvider) display() string {
	if p.goos == "windows" {
		return "primary"
	}
	if d := p.getenv("WAYLAND_DISPLAY"); d != "" {
		return d
	}
	return p.getenv("DISPLAY")
}
