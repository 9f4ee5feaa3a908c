// Package dialog implements the screen recording options dialog: three
// persisted toggles, and the permission and consent handshake that ends in
// starting the recording service.
package dialog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/petems/screenrecord/internal/consent"
	"github.com/petems/screenrecord/internal/options"
	"github.com/petems/screenrecord/internal/overlay"
	"github.com/petems/screenrecord/internal/permissions"
	"github.com/petems/screenrecord/internal/recording"
	"github.com/petems/screenrecord/internal/resources"
	"github.com/petems/screenrecord/internal/settings"
	"github.com/rs/zerolog"
)

// DefaultOverlayTimeout bounds the best-effort overlay dismissal.
const DefaultOverlayTimeout = 3 * time.Second

// Surface renders the dialog. Methods are called from the dispatcher goroutine.
type Surface interface {
	// Show displays the dialog with the loaded toggle values.
	Show(v options.Values)
	// ShowError displays a short dismissible message.
	ShowError(message string)
	// Close removes the dialog.
	Close()
}

type Config struct {
	Store          settings.Store
	User           settings.User
	Permissions    permissions.Manager
	Consent        consent.Provider
	Recorder       recording.Service
	Overlay        overlay.Dismisser // Optional - can be nil
	OverlayTimeout time.Duration
	Strings        *resources.Strings
	Logger         zerolog.Logger
}

// Dialog serializes every event (toggle edits, button presses, permission and
// consent results) through one goroutine.
type Dialog struct {
	store          settings.Store
	user           settings.User
	perms          permissions.Manager
	consent        consent.Provider
	recorder       recording.Service
	overlay        overlay.Dismisser
	overlayTimeout time.Duration
	strings        *resources.Strings
	log            zerolog.Logger

	surface Surface
	events  chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	machine Machine
}

func New(cfg Config) *Dialog {
	timeout := cfg.OverlayTimeout
	if timeout <= 0 {
		timeout = DefaultOverlayTimeout
	}
	strs := cfg.Strings
	if strs == nil {
		strs = resources.New("")
	}
	return &Dialog{
		store:          cfg.Store,
		user:           cfg.User,
		perms:          cfg.Permissions,
		consent:        cfg.Consent,
		recorder:       cfg.Recorder,
		overlay:        cfg.Overlay,
		overlayTimeout: timeout,
		strings:        strs,
		log:            cfg.Logger,
		events:         make(chan Event),
		done:           make(chan struct{}),
	}
}

// Open loads the options, shows them on surface and starts dispatching.
// System overlays are dismissed in the background.
func (d *Dialog) Open(ctx context.Context, surface Surface) error {
	values, err := options.Load(ctx, d.store, d.user)
	if err != nil {
		return fmt.Errorf("failed to load recording options: %w", err)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.surface = surface
	d.machine = Machine{State: Idle, Values: values}

	go overlay.DismissBestEffort(d.ctx, d.overlay, overlay.ReasonScreenshot, d.overlayTimeout, d.log)

	surface.Show(values)
	d.log.Debug().
		Bool("audio", values.Mic).
		Bool("taps", values.Taps).
		Bool("low_quality", values.LowQuality).
		Msg("Recording options loaded")

	go d.loop()
	return nil
}

// Toggle records a user edit of o.
func (d *Dialog) Toggle(o options.Option, on bool) {
	d.post(Toggled{Option: o, Value: on})
}

// Start begins the permission and consent handshake.
func (d *Dialog) Start() {
	d.post(StartPressed{})
}

// Cancel closes the dialog without side effects.
func (d *Dialog) Cancel() {
	d.post(CancelPressed{})
}

// Done is closed once the dialog reached a terminal state or its context ended.
func (d *Dialog) Done() <-chan struct{} {
	return d.done
}

// State returns the current state.
func (d *Dialog) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machine.State
}

// Values returns the current toggle values.
func (d *Dialog) Values() options.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machine.Values
}

// Err reports why the dialog was denied, or nil.
func (d *Dialog) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machine.Err
}

// post hands ev to the dispatcher. Events after close are dropped.
func (d *Dialog) post(ev Event) {
	select {
	case d.events <- ev:
	case <-d.done:
	}
}

func (d *Dialog) loop() {
	defer d.finish()

	for {
		select {
		case <-d.ctx.Done():
			return
		case ev := <-d.events:
			ev = d.withGrants(ev)

			d.mu.Lock()
			next, effects, err := HandleEvent(d.machine, ev)
			if err != nil {
				d.mu.Unlock()
				d.log.Warn().Err(err).Msg("Ignoring event")
				continue
			}
			prev := d.machine.State
			d.machine = next
			d.mu.Unlock()

			if prev != next.State {
				d.log.Debug().Stringer("from", prev).Stringer("to", next.State).Msg("Dialog state changed")
			}

			for _, eff := range effects {
				d.execute(eff)
			}

			if next.State.Terminal() {
				return
			}
		}
	}
}

func (d *Dialog) finish() {
	d.once.Do(func() {
		close(d.done)
		d.cancel()
	})
}

// withGrants fills in the currently granted permissions for events that need
// them. The microphone is only probed when audio was asked for.
func (d *Dialog) withGrants(ev Event) Event {
	switch e := ev.(type) {
	case StartPressed:
		d.mu.Lock()
		v := d.machine.Values
		d.mu.Unlock()
		d.log.Info().
			Bool("audio", v.Mic).
			Bool("taps", v.Taps).
			Bool("low_quality", v.LowQuality).
			Msg("Record button clicked")
		e.Granted = d.currentGrants(v.Mic)
		return e
	case PermissionResult:
		t, err := ParseCode(e.Code)
		if err != nil {
			return e
		}
		for _, p := range d.currentGrants(t.Phase == PhaseAudio) {
			if !e.Granted.Has(p) {
				e.Granted = append(e.Granted, p)
			}
		}
		return e
	default:
		return ev
	}
}

func (d *Dialog) currentGrants(withMic bool) permissions.Set {
	var set permissions.Set
	if d.perms.Check(permissions.WriteStorage) {
		set = append(set, permissions.WriteStorage)
	}
	if withMic && d.perms.Check(permissions.RecordAudio) {
		set = append(set, permissions.RecordAudio)
	}
	return set
}

func (d *Dialog) execute(eff Effect) {
	switch e := eff.(type) {
	case PersistOption:
		if err := options.Save(d.ctx, d.store, d.user, e.Option, e.Value); err != nil {
			d.log.Error().Err(err).Stringer("option", e.Option).Msg("Failed to persist option")
		}

	case RequestPermissions:
		d.log.Info().Int("code", e.Code).Interface("permissions", e.Permissions).Msg("Requesting permissions")
		go func() {
			granted, err := d.perms.Request(d.ctx, e.Permissions)
			if err != nil {
				d.log.Error().Err(err).Int("code", e.Code).Msg("Permission request failed")
				granted = nil
			}
			d.post(PermissionResult{Code: e.Code, Granted: granted})
		}()

	case RequestCapture:
		intent := d.consent.CreateCaptureIntent()
		d.log.Info().Int("code", e.Code).Str("intent", intent.ID).Msg("Requesting screen capture")
		go func() {
			res, err := d.consent.Launch(d.ctx, intent)
			if err != nil {
				d.log.Error().Err(err).Int("code", e.Code).Msg("Screen capture request failed")
				res = consent.Result{}
			}
			d.post(ConsentResult{Code: e.Code, Approved: res.Approved, Payload: res.Payload})
		}()

	case StartService:
		r := e.Request
		d.log.Info().
			Bool("audio", r.UseAudio).
			Bool("taps", r.ShowTaps).
			Bool("low_quality", r.LowQuality).
			Msg("Starting recording")
		intent := recording.NewStartIntent(e.Payload, r.UseAudio, r.ShowTaps, r.LowQuality)
		if _, err := d.recorder.StartForeground(d.ctx, intent); err != nil {
			d.log.Error().Err(err).Msg("Failed to start recording service")
			d.surface.ShowError(d.strings.Get(resources.PermissionError))
		}

	case ShowError:
		d.surface.ShowError(d.strings.Get(e.Key))

	case Close:
		d.surface.Close()
	}
}
