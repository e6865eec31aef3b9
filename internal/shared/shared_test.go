package shared

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == second {
		t.Error("Expected unique IDs")
	}
	if len(first) != 36 {
		t.Errorf("Expected UUID string, got %q", first)
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(state) != 32 {
		t.Errorf("Expected 32 hex characters, got %d", len(state))
	}

	other, err := GenerateState()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if state == other {
		t.Error("Expected unique state tokens")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]any{"name": "Road Trip", "tracks": 12}

	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if strings.Contains(string(out), "\n") {
			t.Errorf("Expected compact output, got %q", out)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.Contains(string(out), "\n  ") {
			t.Errorf("Expected indented output, got %q", out)
		}

		var decoded map[string]any
		if err := json.Unmarshal(out, &decoded); err != nil {
			t.Errorf("Expected valid JSON: %v", err)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		first, _ := MarshalJSON(data, true)
		second, _ := MarshalJSON(data, true)
		if string(first) != string(second) {
			t.Error("Expected identical output for identical input")
		}
	})
}

func TestOpenBrowserUnsupported(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()
	getRuntime = func() string { return "plan9" }

	if err := OpenBrowser("https://example.com"); err == nil {
		t.Error("Expected error on unsupported platform")
	}
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(&buf)
	logger.Info("hello", "key", "value")

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("Expected log output, got %q", buf.String())
	}
}
