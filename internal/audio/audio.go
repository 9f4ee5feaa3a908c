package audio

// Prober reports whether the host has a usable audio input.
type Prober interface {
	HasInput() (bool, error)
	ListDevices() ([]AudioDevice, error)
}

// AudioDevice represents an audio input device
type AudioDevice struct {
	ID      string
	Name    string
	Default bool
}

// inputDevices keeps devices with at least one input channel.
func inputDevices(all []deviceInfo, def *deviceInfo) []AudioDevice {
	result := make([]AudioDevice, 0, len(all))
	for _, d := range all {
		if d.maxInputChannels > 0 {
			result = append(result, AudioDevice{
				ID:      d.name,
				Name:    d.name,
				Default: def != nil && d.name == def.name,
			})
		}
	}
	return result
}

type deviceInfo struct {
	name             string
	maxInputChannels int
}
