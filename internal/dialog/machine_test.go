package dialog

import (
	"errors"
	"testing"

	"github.com/petems/screenrecord/internal/consent"
	"github.com/petems/screenrecord/internal/options"
	"github.com/petems/screenrecord/internal/permissions"
	"github.com/petems/screenrecord/internal/resources"
)

var allGranted = permissions.Set{permissions.WriteStorage, permissions.RecordAudio}

func idle(v options.Values) Machine {
	return Machine{State: Idle, Values: v}
}

func mustHandle(t *testing.T, m Machine, ev Event) (Machine, []Effect) {
	t.Helper()
	next, effects, err := HandleEvent(m, ev)
	if err != nil {
		t.Fatalf("HandleEvent(%T): %v", ev, err)
	}
	return next, effects
}

func TestStartWithoutAudioGoesStraightToConsent(t *testing.T) {
	m := idle(options.Values{Taps: true})

	// Microphone missing must not matter when audio is off.
	m, effects := mustHandle(t, m, StartPressed{Granted: permissions.Set{permissions.WriteStorage}})

	if m.State != AwaitingCaptureConsent {
		t.Fatalf("expected awaiting consent, got %s", m.State)
	}
	if len(effects) != 1 {
		t.Fatalf("expected one effect, got %v", effects)
	}
	rc, ok := effects[0].(RequestCapture)
	if !ok || rc.Code != 302 {
		t.Errorf("expected RequestCapture{302}, got %#v", effects[0])
	}
}

func TestStartWithAudioAndMissingMicRequestsPermission(t *testing.T) {
	m := idle(options.Values{Mic: true, LowQuality: true})
	m, effects := mustHandle(t, m, StartPressed{Granted: permissions.Set{permissions.WriteStorage}})

	if m.State != AwaitingAudioPermission {
		t.Fatalf("expected awaiting audio permission, got %s", m.State)
	}
	rp, ok := effects[0].(RequestPermissions)
	if !ok {
		t.Fatalf("expected RequestPermissions, got %#v", effects[0])
	}
	if len(rp.Permissions) != 1 || rp.Permissions[0] != permissions.RecordAudio {
		t.Errorf("expected only record_audio, got %v", rp.Permissions)
	}
	tok, err := ParseCode(rp.Code)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Phase != PhaseAudio || tok.Request != (options.CaptureRequest{UseAudio: true, LowQuality: true}) {
		t.Errorf("unexpected token %+v", tok)
	}
}

func TestStartAsksForStorageAlongsideAudio(t *testing.T) {
	m := idle(options.Values{Mic: true})
	_, effects := mustHandle(t, m, StartPressed{})

	rp := effects[0].(RequestPermissions)
	if len(rp.Permissions) != 2 || !permissions.Set(rp.Permissions).Has(permissions.WriteStorage) {
		t.Errorf("expected record_audio and write_storage, got %v", rp.Permissions)
	}
}

func TestStartWithoutStorageEntersStoragePhase(t *testing.T) {
	m := idle(options.Values{})
	m, effects := mustHandle(t, m, StartPressed{})

	if m.State != AwaitingStoragePermission {
		t.Fatalf("expected awaiting storage permission, got %s", m.State)
	}
	rp := effects[0].(RequestPermissions)
	if rp.Code != 2010 {
		t.Errorf("expected storage code 2010, got %d", rp.Code)
	}

	m, effects = mustHandle(t, m, PermissionResult{Code: rp.Code, Granted: permissions.Set{permissions.WriteStorage}})
	if m.State != AwaitingCaptureConsent {
		t.Fatalf("expected awaiting consent, got %s", m.State)
	}
	if rc := effects[0].(RequestCapture); rc.Code != 301 {
		t.Errorf("expected consent code 301, got %d", rc.Code)
	}
}

func TestStorageDeniedClosesWithError(t *testing.T) {
	m, effects := mustHandle(t, idle(options.Values{}), StartPressed{})
	code := effects[0].(RequestPermissions).Code

	m, effects = mustHandle(t, m, PermissionResult{Code: code})
	assertDenied(t, m, effects)
}

func TestAudioPermissionRequiresBothGrants(t *testing.T) {
	tests := []struct {
		name    string
		granted permissions.Set
		denied  bool
	}{
		{"both", allGranted, false},
		{"mic only", permissions.Set{permissions.RecordAudio}, true},
		{"storage only", permissions.Set{permissions.WriteStorage}, true},
		{"none", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, effects := mustHandle(t, idle(options.Values{Mic: true}), StartPressed{Granted: permissions.Set{permissions.WriteStorage}})
			code := effects[0].(RequestPermissions).Code

			m, effects = mustHandle(t, m, PermissionResult{Code: code, Granted: tt.granted})
			if tt.denied {
				assertDenied(t, m, effects)
				return
			}
			if m.State != AwaitingCaptureConsent {
				t.Fatalf("expected awaiting consent, got %s", m.State)
			}
			if rc := effects[0].(RequestCapture); rc.Code != 401 {
				t.Errorf("expected consent code 401, got %d", rc.Code)
			}
		})
	}
}

func TestConsentApprovedStartsServiceFromToken(t *testing.T) {
	m, effects := mustHandle(t, idle(options.Values{Taps: true, LowQuality: true}), StartPressed{Granted: allGranted})
	code := effects[0].(RequestCapture).Code

	// Edits after Start must not leak into the recording.
	m, _ = mustHandle(t, m, Toggled{Option: options.ShowTaps, Value: false})
	m, _ = mustHandle(t, m, Toggled{Option: options.MicrophoneEnabled, Value: true})

	payload := consent.Payload{Grant: "g"}
	m, effects = mustHandle(t, m, ConsentResult{Code: code, Approved: true, Payload: payload})

	if m.State != Started {
		t.Fatalf("expected started, got %s", m.State)
	}
	if len(effects) != 2 {
		t.Fatalf("expected StartService and Close, got %v", effects)
	}
	ss, ok := effects[0].(StartService)
	if !ok {
		t.Fatalf("expected StartService, got %#v", effects[0])
	}
	want := options.CaptureRequest{ShowTaps: true, LowQuality: true}
	if ss.Request != want || ss.Payload != payload {
		t.Errorf("expected %+v with %+v, got %+v", want, payload, ss)
	}
	if _, ok := effects[1].(Close); !ok {
		t.Errorf("expected Close, got %#v", effects[1])
	}
}

func TestConsentRejectedDenies(t *testing.T) {
	m, effects := mustHandle(t, idle(options.Values{}), StartPressed{Granted: allGranted})
	code := effects[0].(RequestCapture).Code

	m, effects = mustHandle(t, m, ConsentResult{Code: code, Approved: false})
	assertDenied(t, m, effects)
	if !errors.Is(m.Err, ErrConsentRejected) {
		t.Errorf("expected ErrConsentRejected, got %v", m.Err)
	}
}

func TestCancelFromAnyOpenState(t *testing.T) {
	open := []Machine{
		idle(options.Values{}),
		{State: AwaitingAudioPermission, Pending: Token{Phase: PhaseAudio}},
		{State: AwaitingCaptureConsent, Pending: Token{Phase: PhaseConsent}},
	}
	for _, m := range open {
		next, effects := mustHandle(t, m, CancelPressed{})
		if next.State != Cancelled {
			t.Errorf("from %s: expected cancelled, got %s", m.State, next.State)
		}
		if len(effects) != 1 {
			t.Fatalf("from %s: expected Close only, got %v", m.State, effects)
		}
		if _, ok := effects[0].(Close); !ok {
			t.Errorf("from %s: expected Close, got %#v", m.State, effects[0])
		}
	}
}

func TestTerminalStatesIgnoreEvents(t *testing.T) {
	for _, s := range []State{Started, Denied, Cancelled} {
		m := Machine{State: s}
		for _, ev := range []Event{StartPressed{}, CancelPressed{}, Toggled{Option: options.ShowTaps, Value: true}, ConsentResult{Code: 301, Approved: true}} {
			next, effects, err := HandleEvent(m, ev)
			if err != nil || len(effects) != 0 || next != m {
				t.Errorf("%s/%T: expected no-op, got %v %v %v", s, ev, next, effects, err)
			}
		}
	}
}

func TestStaleResultsAreIgnored(t *testing.T) {
	m, effects := mustHandle(t, idle(options.Values{}), StartPressed{Granted: allGranted})
	code := effects[0].(RequestCapture).Code

	// A consent answer for a different combination is not ours.
	next, effects := mustHandle(t, m, ConsentResult{Code: 406, Approved: true})
	if next.State != AwaitingCaptureConsent || len(effects) != 0 {
		t.Errorf("expected stale result to be ignored, got %s %v", next.State, effects)
	}

	// A permission answer while awaiting consent is ignored too.
	next, effects = mustHandle(t, m, PermissionResult{Code: 2020, Granted: allGranted})
	if next.State != AwaitingCaptureConsent || len(effects) != 0 {
		t.Errorf("expected permission result to be ignored, got %s %v", next.State, effects)
	}

	if code != 301 {
		t.Errorf("expected code 301, got %d", code)
	}
}

func TestSecondStartIsIgnored(t *testing.T) {
	m, _ := mustHandle(t, idle(options.Values{}), StartPressed{Granted: allGranted})
	next, effects := mustHandle(t, m, StartPressed{Granted: allGranted})
	if next != m || len(effects) != 0 {
		t.Errorf("expected no-op, got %v %v", next, effects)
	}
}

func TestUnknownCodeIsAnError(t *testing.T) {
	m := Machine{State: AwaitingCaptureConsent, Pending: Token{Phase: PhaseConsent}}
	if _, _, err := HandleEvent(m, ConsentResult{Code: 999}); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("expected ErrUnknownCode, got %v", err)
	}
}

func TestToggleUpdatesValuesAndPersists(t *testing.T) {
	m, effects := mustHandle(t, idle(options.Values{}), Toggled{Option: options.LowQuality, Value: true})
	if !m.Values.LowQuality {
		t.Error("expected low quality to be on")
	}
	po, ok := effects[0].(PersistOption)
	if !ok || po.Option != options.LowQuality || !po.Value {
		t.Errorf("expected PersistOption{LowQuality, true}, got %#v", effects[0])
	}
}

func assertDenied(t *testing.T, m Machine, effects []Effect) {
	t.Helper()
	if m.State != Denied {
		t.Fatalf("expected denied, got %s", m.State)
	}
	if m.Err == nil {
		t.Error("expected a denial error")
	}
	if len(effects) != 2 {
		t.Fatalf("expected ShowError and Close, got %v", effects)
	}
	se, ok := effects[0].(ShowError)
	if !ok || se.Key != resources.PermissionError {
		t.Errorf("expected ShowError{%s}, got %#v", resources.PermissionError, effects[0])
	}
	if _, ok := effects[1].(Close); !ok {
		t.Errorf("expected Close, got %#v", effects[1])
	}
}
