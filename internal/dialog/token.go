package dialog

import (
	"errors"
	"fmt"

	"github.com/petems/screenrecord/internal/options"
)

// Phase says which asynchronous request a token belongs to.
type Phase int

const (
	// PhaseStorage is a storage-only permission request.
	PhaseStorage Phase = iota + 1
	// PhaseAudio is a microphone (and, if missing, storage) permission request.
	PhaseAudio
	// PhaseConsent is the screen-capture consent prompt.
	PhaseConsent
)

func (p Phase) String() string {
	switch p {
	case PhaseStorage:
		return "storage"
	case PhaseAudio:
		return "audio"
	case PhaseConsent:
		return "consent"
	default:
		return "unknown"
	}
}

var ErrUnknownCode = errors.New("unknown request code")

// Token correlates an asynchronous result with the request that caused it.
// It carries the full capture request so results can be handled without any
// other dialog state.
type Token struct {
	Phase   Phase
	Request options.CaptureRequest
}

// Consent codes match the values the recording dialog has always used.
var consentCodes = map[options.CaptureRequest]int{
	{}:                                 301,
	{ShowTaps: true}:                   302,
	{LowQuality: true}:                 305,
	{ShowTaps: true, LowQuality: true}: 307,
	{UseAudio: true}:                   401,
	{UseAudio: true, ShowTaps: true}:   402,
	{UseAudio: true, LowQuality: true}: 405,
	{UseAudio: true, ShowTaps: true, LowQuality: true}: 406,
}

// Permission phases keep their historical prefixes and append the option bits.
var permissionPrefixes = map[Phase]int{
	PhaseStorage: 201,
	PhaseAudio:   202,
}

var codeTokens = buildCodeTokens()

func buildCodeTokens() map[int]Token {
	m := make(map[int]Token, 24)
	for _, phase := range []Phase{PhaseStorage, PhaseAudio, PhaseConsent} {
		for bits := 0; bits < 8; bits++ {
			t := Token{Phase: phase, Request: requestFromBits(bits)}
			code := t.Code()
			if _, dup := m[code]; dup {
				panic(fmt.Sprintf("dialog: duplicate request code %d", code))
			}
			m[code] = t
		}
	}
	return m
}

func requestFromBits(bits int) options.CaptureRequest {
	return options.CaptureRequest{
		UseAudio:   bits&4 != 0,
		ShowTaps:   bits&2 != 0,
		LowQuality: bits&1 != 0,
	}
}

func bitsFromRequest(r options.CaptureRequest) int {
	bits := 0
	if r.UseAudio {
		bits |= 4
	}
	if r.ShowTaps {
		bits |= 2
	}
	if r.LowQuality {
		bits |= 1
	}
	return bits
}

// Code encodes the token as the integer handed to the platform.
func (t Token) Code() int {
	if t.Phase == PhaseConsent {
		return consentCodes[t.Request]
	}
	prefix, ok := permissionPrefixes[t.Phase]
	if !ok {
		return 0
	}
	return prefix*10 + bitsFromRequest(t.Request)
}

// ParseCode is the inverse of Token.Code.
func ParseCode(code int) (Token, error) {
	t, ok := codeTokens[code]
	if !ok {
		return Token{}, fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	return t, nil
}
