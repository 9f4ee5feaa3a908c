//go:build darwin

package consent

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>

int hasScreenCaptureAccess() {
    return CGPreflightScreenCaptureAccess();
}

int requestScreenCaptureAccess() {
    return CGRequestScreenCaptureAccess();
}

unsigned int mainDisplayID() {
    return CGMainDisplayID();
}
*/
import "C"

import (
	"context"
	"strconv"
)

type darwinProvider struct{}

// New returns the consent provider for this platform.
func New() Provider {
	return darwinProvider{}
}

func (darwinProvider) CreateCaptureIntent() Intent {
	return NewIntent()
}

// Launch approves when Screen Recording access is already granted. Otherwise
// macOS shows its prompt; a grant made there only applies after relaunch, so
// the current attempt is reported as rejected.
func (darwinProvider) Launch(ctx context.Context, intent Intent) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if C.hasScreenCaptureAccess() == 0 && C.requestScreenCaptureAccess() == 0 {
		return Result{Approved: false}, nil
	}
	return Result{
		Approved: true,
		Payload: Payload{
			Grant:   intent.ID,
			Display: strconv.FormatUint(uint64(C.mainDisplayID()), 10),
		},
	}, nil
}
