package audio

import "testing"

func TestInputDevicesSkipsOutputOnly(t *testing.T) {
	all := []deviceInfo{
		{name: "HDMI", maxInputChannels: 0},
		{name: "USB Mic", maxInputChannels: 1},
		{name: "Built-in", maxInputChannels: 2},
	}
	def := &deviceInfo{name: "Built-in", maxInputChannels: 2}

	got := inputDevices(all, def)
	if len(got) != 2 {
		t.Fatalf("expected 2 input devices, got %d", len(got))
	}
	if got[0].Name != "USB Mic" || got[0].Default {
		t.Errorf("unexpected first device: %+v", got[0])
	}
	if got[1].Name != "Built-in" || !got[1].Default {
		t.Errorf("expected Built-in to be default, got %+v", got[1])
	}
}

func TestInputDevicesWithoutDefault(t *testing.T) {
	got := inputDevices([]deviceInfo{{name: "Mic", maxInputChannels: 1}}, nil)
	if len(got) != 1 || got[0].Default {
		t.Errorf("expected one non-default device, got %+v", got)
	}
}
