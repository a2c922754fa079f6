package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name string
		ms   int
		want string
	}{
		{name: "zero", ms: 0, want: "0:00"},
		{name: "negative", ms: -10, want: "0:00"},
		{name: "sub second", ms: 999, want: "0:00"},
		{name: "padded seconds", ms: 65_000, want: "1:05"},
		{name: "full track", ms: 320_357, want: "5:20"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.ms); got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.ms, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tc := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "abc", n: 5, want: "abc"},
		{name: "exact", in: "abcde", n: 5, want: "abcde"},
		{name: "cut", in: "abcdef", n: 4, want: "abc…"},
		{name: "unicode", in: "canción", n: 6, want: "canci…"},
		{name: "disabled", in: "abcdef", n: 0, want: "abcdef"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestGenerators(t *testing.T) {
	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b {
			t.Error("expected distinct IDs")
		}
		if len(a) != 36 {
			t.Errorf("expected uuid string of length 36, got %d", len(a))
		}
	})

	t.Run("GenerateState", func(t *testing.T) {
		s, err := GenerateState()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s == "" {
			t.Error("expected non-empty state")
		}
	})
}

func TestLoggers(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		l := NewLogger(nil)
		SetLogLevel(l, "DEBUG")
		if l.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", l.GetLevel())
		}

		SetLogLevel(l, "nonsense")
		if l.GetLevel() != log.InfoLevel {
			t.Errorf("expected fallback to info level, got %v", l.GetLevel())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "tunedeck.log")
		l, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		l.Info("hello")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if len(data) == 0 {
			t.Error("expected log file to contain output")
		}
	})
}
