package dialog

import (
	"errors"
	"fmt"

	"github.com/petems/screenrecord/internal/consent"
	"github.com/petems/screenrecord/internal/options"
	"github.com/petems/screenrecord/internal/permissions"
	"github.com/petems/screenrecord/internal/resources"
)

var (
	// ErrPermissionDenied means a required permission was not granted.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConsentRejected means the screen-capture prompt was declined.
	ErrConsentRejected = errors.New("screen capture consent rejected")
)

// State is where the dialog is in the start handshake.
type State int

const (
	Idle State = iota
	AwaitingStoragePermission
	AwaitingAudioPermission
	AwaitingCaptureConsent
	Started
	Denied
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingStoragePermission:
		return "awaiting_storage_permission"
	case AwaitingAudioPermission:
		return "awaiting_audio_permission"
	case AwaitingCaptureConsent:
		return "awaiting_capture_consent"
	case Started:
		return "started"
	case Denied:
		return "denied"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal states close the dialog.
func (s State) Terminal() bool {
	return s == Started || s == Denied || s == Cancelled
}

// Machine is the dialog state. It is a value; HandleEvent returns a new one.
type Machine struct {
	State   State
	Values  options.Values
	Pending Token // outstanding request while awaiting
	Err     error // why the dialog ended in Denied
}

// Event is an input to the machine.
type Event interface{ isEvent() }

// Toggled is a user edit of one option.
type Toggled struct {
	Option options.Option
	Value  bool
}

// StartPressed carries the permissions granted at the moment Start was pressed.
type StartPressed struct {
	Granted permissions.Set
}

type CancelPressed struct{}

// PermissionResult is the answer to a permission request.
type PermissionResult struct {
	Code    int
	Granted permissions.Set
}

// ConsentResult is the answer to a capture consent prompt.
type ConsentResult struct {
	Code     int
	Approved bool
	Payload  consent.Payload
}

func (Toggled) isEvent()          {}
func (StartPressed) isEvent()     {}
func (CancelPressed) isEvent()    {}
func (PermissionResult) isEvent() {}
func (ConsentResult) isEvent()    {}

// Effect is work the dispatcher performs on behalf of the machine.
type Effect interface{ isEffect() }

type PersistOption struct {
	Option options.Option
	Value  bool
}

type RequestPermissions struct {
	Permissions []permissions.Permission
	Code        int
}

type RequestCapture struct {
	Code int
}

type StartService struct {
	Request options.CaptureRequest
	Payload consent.Payload
}

type ShowError struct {
	Key string
}

type Close struct{}

func (PersistOption) isEffect()      {}
func (RequestPermissions) isEffect() {}
func (RequestCapture) isEffect()     {}
func (StartService) isEffect()       {}
func (ShowError) isEffect()          {}
func (Close) isEffect()              {}

// HandleEvent is a pure function that takes the current machine and an event
// and returns the next machine along with the effects to execute. Events that
// do not apply to the current state are ignored.
func HandleEvent(m Machine, ev Event) (Machine, []Effect, error) {
	if m.State.Terminal() {
		return m, nil, nil
	}

	switch ev := ev.(type) {
	case Toggled:
		return handleToggled(m, ev)
	case StartPressed:
		return handleStart(m, ev)
	case CancelPressed:
		m.State = Cancelled
		m.Pending = Token{}
		return m, []Effect{Close{}}, nil
	case PermissionResult:
		return handlePermissionResult(m, ev)
	case ConsentResult:
		return handleConsentResult(m, ev)
	default:
		return m, nil, fmt.Errorf("unknown event %T", ev)
	}
}

func handleToggled(m Machine, ev Toggled) (Machine, []Effect, error) {
	if ev.Option.Key() == "" {
		return m, nil, fmt.Errorf("%w: %d", options.ErrUnknownOption, int(ev.Option))
	}
	m.Values = m.Values.With(ev.Option, ev.Value)
	return m, []Effect{PersistOption{Option: ev.Option, Value: ev.Value}}, nil
}

func handleStart(m Machine, ev StartPressed) (Machine, []Effect, error) {
	if m.State != Idle {
		return m, nil, nil
	}

	req := m.Values.Request()
	needStorage := !ev.Granted.Has(permissions.WriteStorage)

	if req.UseAudio && !ev.Granted.Has(permissions.RecordAudio) {
		perms := []permissions.Permission{permissions.RecordAudio}
		if needStorage {
			perms = append(perms, permissions.WriteStorage)
		}
		return await(m, AwaitingAudioPermission, Token{Phase: PhaseAudio, Request: req}, perms)
	}

	if needStorage {
		return await(m, AwaitingStoragePermission, Token{Phase: PhaseStorage, Request: req},
			[]permissions.Permission{permissions.WriteStorage})
	}

	return requestCapture(m, req)
}

func await(m Machine, s State, t Token, perms []permissions.Permission) (Machine, []Effect, error) {
	m.State = s
	m.Pending = t
	return m, []Effect{RequestPermissions{Permissions: perms, Code: t.Code()}}, nil
}

func requestCapture(m Machine, req options.CaptureRequest) (Machine, []Effect, error) {
	t := Token{Phase: PhaseConsent, Request: req}
	m.State = AwaitingCaptureConsent
	m.Pending = t
	return m, []Effect{RequestCapture{Code: t.Code()}}, nil
}

func deny(m Machine, err error) (Machine, []Effect, error) {
	m.State = Denied
	m.Pending = Token{}
	m.Err = err
	return m, []Effect{ShowError{Key: resources.PermissionError}, Close{}}, nil
}

func handlePermissionResult(m Machine, ev PermissionResult) (Machine, []Effect, error) {
	t, err := ParseCode(ev.Code)
	if err != nil {
		return m, nil, err
	}
	if t != m.Pending {
		return m, nil, nil
	}

	switch {
	case t.Phase == PhaseStorage && m.State == AwaitingStoragePermission:
		if !ev.Granted.Has(permissions.WriteStorage) {
			return deny(m, fmt.Errorf("%w: %s", ErrPermissionDenied, permissions.WriteStorage))
		}
	case t.Phase == PhaseAudio && m.State == AwaitingAudioPermission:
		for _, p := range []permissions.Permission{permissions.WriteStorage, permissions.RecordAudio} {
			if !ev.Granted.Has(p) {
				return deny(m, fmt.Errorf("%w: %s", ErrPermissionDenied, p))
			}
		}
	default:
		return m, nil, nil
	}

	return requestCapture(m, t.Request)
}

func handleConsentResult(m Machine, ev ConsentResult) (Machine, []Effect, error) {
	t, err := ParseCode(ev.Code)
	if err != nil {
		return m, nil, err
	}
	if m.State != AwaitingCaptureConsent || t.Phase != PhaseConsent || t != m.Pending {
		return m, nil, nil
	}

	if !ev.Approved {
		return deny(m, ErrConsentRejected)
	}

	m.State = Started
	m.Pending = Token{}
	return m, []Effect{StartService{Request: t.Request, Payload: ev.Payload}, Close{}}, nil
}
