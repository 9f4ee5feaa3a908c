//go:build !darwin

package permissions

import (
	"context"

	"github.com/petems/screenrecord/internal/audio"
)

// Linux and Windows have no per-app microphone prompt: the microphone counts
// as granted when an input device can be opened.
type hostManager struct {
	outputDir string
	probe     audio.Prober
}

// New returns the permission manager for this platform. Storage is checked
// against outputDir.
func New(outputDir string) Manager {
	return &hostManager{outputDir: outputDir, probe: audio.NewProber()}
}

func (m *hostManager) Check(p Permission) bool {
	switch p {
	case RecordAudio:
		ok, err := m.probe.HasInput()
		return err == nil && ok
	case WriteStorage:
		return storageWritable(m.outputDir)
	default:
		return false
	}
}

func (m *hostManager) Request(ctx context.Context, perms []Permission) (Set, error) {
	for _, p := range perms {
		if p != RecordAudio && p != WriteStorage {
			return nil, unknown(p)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return granted(m, perms), nil
}
