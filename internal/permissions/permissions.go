// Package permissions checks and requests the runtime permissions a screen
// recording needs.
package permissions

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Permission names a runtime permission.
type Permission string

const (
	// RecordAudio allows microphone capture.
	RecordAudio Permission = "record_audio"
	// WriteStorage allows writing recordings to the output directory.
	WriteStorage Permission = "write_storage"
)

// Set is the group of permissions granted after a request.
type Set []Permission

func (s Set) Has(p Permission) bool {
	for _, q := range s {
		if q == p {
			return true
		}
	}
	return false
}

// Manager is the platform permission subsystem.
type Manager interface {
	// Check reports whether p is currently granted. It never prompts and
	// never changes anything on disk.
	Check(p Permission) bool
	// Request prompts for perms where the platform can, and blocks until the
	// user has answered or ctx is done. The returned set holds the granted ones.
	Request(ctx context.Context, perms []Permission) (Set, error)
}

// storageWritable reports whether files can be created in dir. A missing dir
// counts as writable when its nearest existing ancestor is. Nothing is left
// behind on disk.
func storageWritable(dir string) bool {
	if dir == "" {
		return false
	}
	probeDir := filepath.Clean(dir)
	for {
		info, err := os.Stat(probeDir)
		if err == nil {
			if !info.IsDir() {
				return false
			}
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false
		}
		parent := filepath.Dir(probeDir)
		if parent == probeDir {
			return false
		}
		probeDir = parent
	}

	f, err := os.CreateTemp(probeDir, ".screenrecord-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

func granted(m Manager, perms []Permission) Set {
	var out Set
	for _, p := range perms {
		if m.Check(p) {
			out = append(out, p)
		}
	}
	return out
}

func unknown(p Permission) error {
	return fmt.Errorf("unknown permission %q", p)
}
