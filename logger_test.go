package colorpipe

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/shader"
)

// captureLogs routes colorpipe logging at debug level into a buffer for the
// rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func buildAndEmit(t *testing.T) {
	t.Helper()
	p, err := Build([]Transform{scale(2), scale(0.25)}, opdata.DirectionForward)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.GPUShader(shader.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
}

func TestLogger_DefaultIsSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger is enabled, want silent")
	}
}

func TestSetLogger_PropagatesToSubpackages(t *testing.T) {
	buf := captureLogs(t)
	buildAndEmit(t)

	for _, want := range []string{
		"colorpipe: pipeline built",
		"ops: optimizer pass",
		"shader: program built",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output does not contain %q", want)
		}
	}
}

func TestSetLogger_NilSilencesSubpackages(t *testing.T) {
	buf := captureLogs(t)
	SetLogger(nil)
	buildAndEmit(t)

	if buf.Len() != 0 {
		t.Errorf("log output after SetLogger(nil) = %q, want empty", buf.String())
	}
	if Logger() == nil {
		t.Error("Logger() = nil after SetLogger(nil)")
	}
}

func TestSetLogger_ConcurrentWithBuild(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := Build([]Transform{scale(2), scale(3)}, opdata.DirectionForward); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			SetLogger(nil)
		}()
	}
	wg.Wait()
}
