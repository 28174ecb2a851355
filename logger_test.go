package typewriter

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLoggerDefaultSilent(t *testing.T) {
	for _, l := range []*slog.Logger{Logger(), LoggerFor("atlas")} {
		if l == nil {
			t.Fatal("default logger is nil")
		}
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			if l.Enabled(context.Background(), level) {
				t.Errorf("default logger enabled for %v", level)
			}
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom {
		t.Fatal("Logger() did not return the installed logger")
	}
	Logger().Debug("atlas built", "glyphs", 95)
	if !strings.Contains(buf.String(), "atlas built") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLoggerFor(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	a := LoggerFor("page")
	if LoggerFor("page") != a {
		t.Error("LoggerFor not memoized")
	}
	if LoggerFor("grain") == a {
		t.Error("components share a logger")
	}

	a.Debug("painted", "page", 2)
	out := buf.String()
	for _, want := range []string{"component=page", "msg=painted", "page=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	if LoggerFor("page") == a {
		t.Error("SetLogger kept the old component logger")
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
	if LoggerFor("stage").Enabled(context.Background(), slog.LevelWarn) {
		t.Error("component logger still enabled after SetLogger(nil)")
	}
}

func TestSetLoggerConcurrent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
		}()
		go func() {
			defer wg.Done()
			LoggerFor("atlas").Debug("concurrent")
		}()
	}
	wg.Wait()
}
