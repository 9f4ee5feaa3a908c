package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

type portAudioProber struct {
	mu sync.Mutex
}

// NewProber returns a PortAudio-backed prober. PortAudio is initialized per
// call so no host API handles stay open while the dialog is idle.
func NewProber() Prober {
	return &portAudioProber{}
}

func (p *portAudioProber) HasInput() (bool, error) {
	devices, err := p.ListDevices()
	if err != nil {
		return false, err
	}
	return len(devices) > 0, nil
}

func (p *portAudioProber) ListDevices() ([]AudioDevice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	all := make([]deviceInfo, 0, len(devices))
	for _, d := range devices {
		all = append(all, deviceInfo{name: d.Name, maxInputChannels: d.MaxInputChannels})
	}

	var def *deviceInfo
	if d, err := portaudio.DefaultInputDevice(); err == nil && d != nil {
		def = &deviceInfo{name: d.Name, maxInputChannels: d.MaxInputChannels}
	}

	return inputDevices(all, def), nil
}
