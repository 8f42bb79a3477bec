package logger

import "testing"

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		if _, err := New(level, false); err != nil {
			t.Errorf("New(%q) unexpected error: %v", level, err)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", false); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestMust_PanicsOnInvalidLevel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Must("loud", true)
}
