package options

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tableflip.dev/factlog/pkg/store"
)

func TestWindowSpan(t *testing.T) {
	o := WindowOptions{Window: "2d"}
	d, err := o.Span()
	if err != nil {
		t.Fatalf("span: %v", err)
	}
	if d != 48*time.Hour {
		t.Fatalf("expected 48h, got %v", d)
	}

	o.Window = "-1d"
	if _, err := o.Span(); err == nil {
		t.Fatal("expected negative window to fail")
	}
}

func TestWindowEnd(t *testing.T) {
	o := WindowOptions{}
	end, err := o.End()
	if err != nil || !end.IsZero() {
		t.Fatalf("expected zero end, got %v %v", end, err)
	}

	o.Until = "2024-03-04"
	end, err = o.End()
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	want := time.Date(2024, 3, 4, 23, 59, 59, 999999999, time.Local)
	if !end.Equal(want) {
		t.Fatalf("expected %v, got %v", want, end)
	}

	o.Until = "yesterday"
	if _, err := o.End(); err == nil {
		t.Fatal("expected bad date to fail")
	}
}

func TestLoggerWithoutFileIsNop(t *testing.T) {
	o := LogOptions{}
	log, err := o.Logger(&store.Settings{LogLevel: "nonsense"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if log.Core().Enabled(0) {
		t.Fatal("expected a no-op logger")
	}
}

func TestLoggerFlagsOverrideSettings(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "factlog.log")
	o := LogOptions{Level: "debug", File: file}
	log, err := o.Logger(&store.Settings{LogLevel: "error"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if !log.Core().Enabled(-1) {
		t.Fatal("expected debug to be enabled")
	}

	o.Level = "loud"
	if _, err := o.Logger(&store.Settings{}); err == nil {
		t.Fatal("expected bad level to fail")
	}
}

func TestStoreConfig(t *testing.T) {
	o := StoreOptions{}
	cfg, err := o.Config()
	if err != nil || cfg != nil {
		t.Fatalf("expected nil config, got %v %v", cfg, err)
	}

	o.Path = "/tmp/facts"
	cfg, err = o.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.BasePath() != "/tmp/facts" {
		t.Fatalf("unexpected base path %q", cfg.BasePath())
	}
}

func TestHandleError(t *testing.T) {
	boom := errors.New("boom")

	var out bytes.Buffer
	o := OutputOptions{Out: &out}
	if err := o.HandleError(boom); err != boom {
		t.Fatalf("expected error to pass through, got %v", err)
	}

	o.JSON = true
	if err := o.HandleError(boom); err != nil {
		t.Fatalf("expected error to be rendered, got %v", err)
	}
	if got := out.String(); got != "{\"error\":\"boom\"}\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
