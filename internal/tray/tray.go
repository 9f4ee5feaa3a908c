package tray

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/petems/screenrecord/internal/dialog"
	"github.com/petems/screenrecord/internal/options"
	"github.com/petems/screenrecord/internal/resources"
	"github.com/rs/zerolog"
)

// errorLinger keeps the tray alive long enough to read an error.
const errorLinger = 3 * time.Second

// Controller is the part of the dialog the tray drives.
type Controller interface {
	Open(ctx context.Context, surface dialog.Surface) error
	Toggle(o options.Option, on bool)
	Start()
	Cancel()
	Done() <-chan struct{}
}

type UI struct {
	ctrl    Controller
	strings *resources.Strings
	log     zerolog.Logger
	ctx     context.Context
	openErr error

	mu       sync.Mutex
	errShown bool

	// Menu items
	toggles map[options.Option]*systray.MenuItem
	mStart  *systray.MenuItem
	mCancel *systray.MenuItem
}

func New(ctrl Controller, strs *resources.Strings, log zerolog.Logger) *UI {
	return &UI{
		ctrl:    ctrl,
		strings: strs,
		log:     log,
		toggles: make(map[options.Option]*systray.MenuItem),
	}
}

// Run shows the dialog in the system tray. It MUST run on the main thread
// and returns once the dialog closed.
func (u *UI) Run(ctx context.Context) error {
	u.ctx = ctx
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(u.onReady, u.onExit)
	return u.openErr
}

func (u *UI) onReady() {
	u.updateStatus("idle")
	systray.SetTooltip(u.strings.Get(resources.Title))

	for _, o := range options.All {
		u.toggles[o] = systray.AddMenuItemCheckbox(u.strings.Get(resources.OptionLabel(o)), "", false)
	}
	systray.AddSeparator()
	u.mStart = systray.AddMenuItem(u.strings.Get(resources.StartLabel), "")
	u.mCancel = systray.AddMenuItem(u.strings.Get(resources.CancelLabel), "")

	if err := u.ctrl.Open(u.ctx, u); err != nil {
		u.log.Error().Err(err).Msg("Failed to open recording dialog")
		u.openErr = err
		systray.Quit()
		return
	}

	// Event loop
	go u.handleEvents()
}

func (u *UI) handleEvents() {
	mic := u.toggles[options.MicrophoneEnabled]
	taps := u.toggles[options.ShowTaps]
	low := u.toggles[options.LowQuality]

	for {
		select {
		case <-mic.ClickedCh:
			u.flip(options.MicrophoneEnabled, mic)
		case <-taps.ClickedCh:
			u.flip(options.ShowTaps, taps)
		case <-low.ClickedCh:
			u.flip(options.LowQuality, low)
		case <-u.mStart.ClickedCh:
			u.mStart.Disable()
			u.updateStatus("waiting")
			u.ctrl.Start()
		case <-u.mCancel.ClickedCh:
			u.ctrl.Cancel()
		case <-u.ctrl.Done():
			return
		}
	}
}

func (u *UI) flip(o options.Option, item *systray.MenuItem) {
	on := !item.Checked()
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
	u.log.Info().Stringer("option", o).Bool("enabled", on).Msg("Changed option")
	u.ctrl.Toggle(o, on)
}

// Show implements dialog.Surface.
func (u *UI) Show(v options.Values) {
	for o, item := range u.toggles {
		if v.Get(o) {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// ShowError implements dialog.Surface.
func (u *UI) ShowError(message string) {
	u.mu.Lock()
	u.errShown = true
	u.mu.Unlock()

	u.updateStatus("error")
	systray.SetTooltip(message)
	u.log.Warn().Str("message", message).Msg("Recording dialog error")
}

// Close implements dialog.Surface.
func (u *UI) Close() {
	u.mu.Lock()
	linger := u.errShown
	u.mu.Unlock()

	if linger {
		time.AfterFunc(errorLinger, systray.Quit)
		return
	}
	systray.Quit()
}

func (u *UI) onExit() {
	u.log.Debug().Msg("Tray dialog exited")
}

// updateStatus sets the tray title with camera emoji and status indicator
func (u *UI) updateStatus(status string) {
	systray.SetTitle(fmt.Sprintf("🎥 %s", emojiForStatus(status)))
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "waiting":
		return "🟡" // Yellow - waiting on permission or consent
	case "error":
		return "⚪️" // White - error
	case "idle":
		return "🟢" // Green - ready/idle
	default:
		return "🟢"
	}
}
