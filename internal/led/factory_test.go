package led

import "testing"

func TestNew(t *testing.T) {
	// Should always return a non-nil controller
	ctrl, name := New(testLogger())
	if ctrl == nil {
		t.Fatal("New() returned nil")
	}
	if name == "" {
		t.Error("New() returned no LED name")
	}

	// Results should be non-nil slices (even if empty)
	if ctrl.Available() == nil {
		t.Error("Available() returned nil")
	}
	if ctrl.Patterns() == nil {
		t.Error("Patterns() returned nil")
	}
}

func TestForModel(t *testing.T) {
	tests := []struct {
		model    string
		wantLED  string
		wantNoop bool
	}{
		{"FriendlyElec NanoPC-T6", "system", false},
		{"Orange Pi 5 Plus", "green", false},
		{"Raspberry Pi 4 Model B Rev 1.4", "act", false},
		{"TI AM335x BeagleBone Black", "usr0", false},
		{"unknown", "system", true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			ctrl, name := forModel(tt.model, testLogger())
			if name != tt.wantLED {
				t.Errorf("LED = %q, want %q", name, tt.wantLED)
			}
			if _, isNoop := ctrl.(*noop); isNoop != tt.wantNoop {
				t.Errorf("noop = %v, want %v", isNoop, tt.wantNoop)
			}
		})
	}
}

func TestDetectBoard(t *testing.T) {
	// Should return a non-empty string (or "unknown")
	if model := detectBoard(); model == "" {
		t.Error("detectBoard() returned empty string")
	}
}
