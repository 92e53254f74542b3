package logging

import "testing"

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		if logger := New(level); logger == nil || logger.Logger == nil {
			t.Fatalf("New(%q) returned nil logger", level)
		}
	}
}

func TestComponent(t *testing.T) {
	logger := Default().Component("bookings")
	if logger == nil || logger.Logger == nil {
		t.Fatal("Component returned nil logger")
	}
	logger.Info("smoke")
}
