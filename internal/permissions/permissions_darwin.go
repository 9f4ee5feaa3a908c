//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework AVFoundation -framework Cocoa
#import <AVFoundation/AVFoundation.h>
#import <Cocoa/Cocoa.h>

int checkMicrophonePermission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

void requestMicrophonePermission() {
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {}];
}
*/
import "C"

import (
	"context"
	"time"
)

const (
	micNotDetermined = 0
	micRestricted    = 1
	micDenied        = 2
	micAuthorized    = 3
)

const pollInterval = 200 * time.Millisecond

type darwinManager struct {
	outputDir string
}

// New returns the permission manager for this platform. Storage is checked
// against outputDir.
func New(outputDir string) Manager {
	return &darwinManager{outputDir: outputDir}
}

func (m *darwinManager) Check(p Permission) bool {
	switch p {
	case RecordAudio:
		return int(C.checkMicrophonePermission()) == micAuthorized
	case WriteStorage:
		return storageWritable(m.outputDir)
	default:
		return false
	}
}

func (m *darwinManager) Request(ctx context.Context, perms []Permission) (Set, error) {
	for _, p := range perms {
		switch p {
		case RecordAudio:
			if err := m.requestMicrophone(ctx); err != nil {
				return nil, err
			}
		case WriteStorage:
			// No prompt exists; the directory is either writable or not.
		default:
			return nil, unknown(p)
		}
	}
	return granted(m, perms), nil
}

// requestMicrophone shows the system prompt and waits until the user answers.
func (m *darwinManager) requestMicrophone(ctx context.Context) error {
	if int(C.checkMicrophonePermission()) != micNotDetermined {
		return nil
	}
	C.requestMicrophonePermission()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if int(C.checkMicrophonePermission()) != micNotDetermined {
				return nil
			}
		}
	}
}
