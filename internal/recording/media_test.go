package recording

import (
	"errors"
	"testing"

	"github.com/foxseedlab/voicecap/internal/capture"
)

func TestChooseDevice(t *testing.T) {
	cases := []struct {
		name    string
		devices []Device
		want    string
	}{
		{"built-in label", []Device{{ID: "a", Label: "Line In"}, {ID: "b", Label: "Built-in Input"}}, "b"},
		{"headset mic", []Device{{ID: "a", Label: "HDMI"}, {ID: "b", Label: "Headset Mic (USB)"}}, "b"},
		{"phone", []Device{{ID: "a", Label: "iPhone"}}, "a"},
		{"fallback to first", []Device{{ID: "a", Label: "Line In"}, {ID: "b", Label: "HDMI"}}, "a"},
		{"unlabelled", []Device{{ID: "a"}, {ID: "b"}}, "a"},
	}
	for _, tc := range cases {
		got, ok := ChooseDevice(tc.devices)
		if !ok || got.ID != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got.ID, tc.want)
		}
	}
	if _, ok := ChooseDevice(nil); ok {
		t.Fatal("expected no device for an empty list")
	}
}

func TestNegotiateMimeType(t *testing.T) {
	if got := NegotiateMimeType(fakeCodecs{"audio/webm": true, "audio/mp4": true}); got != "audio/webm" {
		t.Fatalf("expected webm, got %q", got)
	}
	if got := NegotiateMimeType(fakeCodecs{"audio/mp4": true}); got != "audio/mp4" {
		t.Fatalf("expected mp4, got %q", got)
	}
	if got := NegotiateMimeType(fakeCodecs{}); got != "" {
		t.Fatalf("expected platform default, got %q", got)
	}
	if got := NegotiateMimeType(nil); got != "" {
		t.Fatalf("expected platform default, got %q", got)
	}
}

func TestClassifyMediaError_KeepsRawName(t *testing.T) {
	err := ClassifyMediaError(&MediaError{Name: "NotSupportedError"})
	if err.Code != capture.CodeUnknownMicError || err.Detail != "NotSupportedError" {
		t.Fatalf("unexpected classification: %+v", err)
	}
	var me *MediaError
	if !errors.As(err, &me) {
		t.Fatal("expected the host error to stay reachable")
	}
}

func TestClassifyMediaError_PlainError(t *testing.T) {
	err := ClassifyMediaError(errors.New("device exploded"))
	if !errors.Is(err, capture.ErrUnknownMicError) || err.Detail != "device exploded" {
		t.Fatalf("unexpected classification: %+v", err)
	}
}

func TestConstraintsFor(t *testing.T) {
	if c := constraintsFor(AutoDevice); c.DeviceID != "" {
		t.Fatalf("auto must not pin a device, got %q", c.DeviceID)
	}
	if c := constraintsFor("usb"); c.DeviceID != "usb" || c.ChannelCount != 1 {
		t.Fatalf("unexpected constraints: %+v", c)
	}
}
