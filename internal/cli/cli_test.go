package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/gogpu/typewriter"
)

func TestLayoutText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		cols  int
		rows  int
		pages int
		want  []strike // strikes of the last page
	}{
		{"plain", "ab c", 10, 5, 1, []strike{{0, 0, 'a'}, {0, 1, 'b'}, {0, 3, 'c'}}},
		{"newline", "a\nb", 10, 5, 1, []strike{{0, 0, 'a'}, {1, 0, 'b'}}},
		{"overstrike", "a\b_", 10, 5, 1, []strike{{0, 0, 'a'}, {0, 0, '_'}}},
		{"carriage return", "ab\r__", 10, 5, 1, []strike{{0, 0, 'a'}, {0, 1, 'b'}, {0, 0, '_'}, {0, 1, '_'}}},
		{"tab", "\tx", 20, 5, 1, []strike{{0, 8, 'x'}}},
		{"wrap", "abcd", 3, 5, 1, []strike{{0, 0, 'a'}, {0, 1, 'b'}, {0, 2, 'c'}, {1, 0, 'd'}}},
		{"page overflow", "a\nb\nc", 10, 2, 2, []strike{{0, 0, 'c'}}},
		{"form feed", "a\fb", 10, 5, 2, []strike{{0, 0, 'b'}}},
		{"trailing feed", "a\f", 10, 5, 1, []strike{{0, 0, 'a'}}},
		{"empty", "", 10, 5, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := layoutText(tt.text, tt.cols, tt.rows)
			if len(pages) != tt.pages {
				t.Fatalf("pages = %d, want %d", len(pages), tt.pages)
			}
			got := pages[len(pages)-1]
			if len(got) != len(tt.want) {
				t.Fatalf("strikes = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("strike %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug message logged at info level")
	}
	l.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestInstallLogger(t *testing.T) {
	prev := typewriter.Logger()
	t.Cleanup(func() { typewriter.SetLogger(prev) })

	var buf bytes.Buffer
	installLogger(newLogger(&buf, log.DebugLevel))
	typewriter.Logger().Warn("from library", "key", "value")
	if !strings.Contains(buf.String(), "from library") {
		t.Errorf("library log not routed: %q", buf.String())
	}
}

func TestConfigCommand(t *testing.T) {
	prev := typewriter.Logger()
	t.Cleanup(func() { typewriter.SetLogger(prev) })

	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs([]string{"config"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[sections.fill]", "[grain]", "order"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("config output missing %q", want)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	prev := typewriter.Logger()
	t.Cleanup(func() { typewriter.SetLogger(prev) })

	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(input, []byte("Hi\b_\nthere\fpage two"), 0o600); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	tests := []struct {
		name string
		args []string
	}{
		{"plain", []string{"--no-effects", "--no-grain"}},
		{"effects", []string{"--variants", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			root := NewRootCommand(&out, &errOut)
			args := append([]string{"render", input, "--out", outDir, "--size", "8", "--scale", "1", "--cols", "20", "--rows", "5"}, tt.args...)
			root.SetArgs(args)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("render: %v\n%s", err, errOut.String())
			}
			for _, name := range []string{"page-001.png", "page-002.png"} {
				info, err := os.Stat(filepath.Join(outDir, name))
				if err != nil {
					t.Fatal(err)
				}
				if info.Size() == 0 {
					t.Errorf("%s is empty", name)
				}
			}
		})
	}
}

func TestRenderCommandErrors(t *testing.T) {
	prev := typewriter.Logger()
	t.Cleanup(func() { typewriter.SetLogger(prev) })

	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(input, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"render", filepath.Join(dir, "nope.txt")}},
		{"bad ink", []string{"render", input, "--ink", "#nothex"}},
		{"missing config", []string{"render", input, "--config", filepath.Join(dir, "nope.toml")}},
		{"missing font", []string{"render", input, "--font", filepath.Join(dir, "nope.ttf")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			root := NewRootCommand(&out, &errOut)
			root.SetArgs(append(tt.args, "--out", dir))
			if err := root.ExecuteContext(context.Background()); err == nil {
				t.Error("render succeeded")
			}
		})
	}
}
