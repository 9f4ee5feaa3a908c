// Package options holds the three screen recording toggles and their
// per-user persistence.
package options

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petems/screenrecord/internal/settings"
)

// Option is a named boolean preference.
type Option int

const (
	MicrophoneEnabled Option = iota
	ShowTaps
	LowQuality
)

// All lists the options in display order.
var All = [...]Option{MicrophoneEnabled, ShowTaps, LowQuality}

var ErrUnknownOption = errors.New("unknown option")

// Key is the settings name the option is persisted under.
func (o Option) Key() string {
	switch o {
	case MicrophoneEnabled:
		return "screenrecord_enable_mic"
	case ShowTaps:
		return "screenrecord_show_taps"
	case LowQuality:
		return "screenrecord_low_quality"
	default:
		return ""
	}
}

func (o Option) String() string {
	switch o {
	case MicrophoneEnabled:
		return "mic"
	case ShowTaps:
		return "taps"
	case LowQuality:
		return "low_quality"
	default:
		return "unknown"
	}
}

// Parse accepts the short name ("mic", "taps", "low_quality") or the settings key.
func Parse(s string) (Option, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, o := range All {
		if s == o.String() || s == o.Key() {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOption, s)
}

// Values is the current state of every toggle.
type Values struct {
	Mic        bool
	Taps       bool
	LowQuality bool
}

func (v Values) Get(o Option) bool {
	switch o {
	case MicrophoneEnabled:
		return v.Mic
	case ShowTaps:
		return v.Taps
	case LowQuality:
		return v.LowQuality
	}
	return false
}

func (v Values) With(o Option, on bool) Values {
	switch o {
	case MicrophoneEnabled:
		v.Mic = on
	case ShowTaps:
		v.Taps = on
	case LowQuality:
		v.LowQuality = on
	}
	return v
}

// Request snapshots the toggles into a capture request.
func (v Values) Request() CaptureRequest {
	return CaptureRequest{UseAudio: v.Mic, ShowTaps: v.Taps, LowQuality: v.LowQuality}
}

// CaptureRequest is the option combination taken when recording is started.
// It is passed by value and never mutated after creation.
type CaptureRequest struct {
	UseAudio   bool
	ShowTaps   bool
	LowQuality bool
}

// Load reads every option for u. Unset options are off.
func Load(ctx context.Context, store settings.Store, u settings.User) (Values, error) {
	var v Values
	for _, o := range All {
		n, err := store.GetInt(ctx, u, o.Key(), 0)
		if err != nil {
			return Values{}, fmt.Errorf("load %s: %w", o, err)
		}
		v = v.With(o, n == 1)
	}
	return v, nil
}

// Save persists a single option for u.
func Save(ctx context.Context, store settings.Store, u settings.User, o Option, on bool) error {
	if o.Key() == "" {
		return fmt.Errorf("%w: %d", ErrUnknownOption, int(o))
	}
	n := 0
	if on {
		n = 1
	}
	return store.PutInt(ctx, u, o.Key(), n)
}
