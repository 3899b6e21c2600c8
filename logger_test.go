package blur

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestNopHandlerDiscards(t *testing.T) {
	var h slog.Handler = nopHandler{}
	ctx := context.Background()
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(ctx, level) {
			t.Errorf("Enabled(%v) = true", level)
		}
	}
	if err := h.Handle(ctx, slog.Record{}); err != nil {
		t.Errorf("Handle() = %v", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.Int("radius", 3)}).(nopHandler); !ok {
		t.Error("WithAttrs() did not return a nopHandler")
	}
	if _, ok := h.WithGroup("blur").(nopHandler); !ok {
		t.Error("WithGroup() did not return a nopHandler")
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	// Default logger must be disabled at all levels.
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLoggerRoundTrip(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)
	if Logger() != custom {
		t.Fatal("Logger() is not the logger passed to SetLogger")
	}
	Logger().Info("blur ready", "radius", 4)
	if !strings.Contains(buf.String(), "blur ready") {
		t.Errorf("output = %q", buf.String())
	}

	SetLogger(nil)
	if l := Logger(); l == nil || l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore a silent logger")
	}
}

func TestSetLoggerCapturesSoftFailure(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	e := NewEngine(WithNativeProbe(func() bool { return false }))
	defer e.Close()

	p, err := e.NewProcessor(NewConfig(WithScheme(Native), WithRadius(2)))
	if err != nil {
		t.Fatal(err)
	}
	src, _ := NewPixelBuffer(4, 4)
	if _, err := p.Blur(src); err != nil {
		t.Fatalf("Blur() error = %v, want soft failure", err)
	}
	if !strings.Contains(buf.String(), "native acceleration unavailable") {
		t.Errorf("expected a warning about native acceleration, got: %s", buf.String())
	}
}

func TestSetLoggerPropagatesToGPU(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	e := NewEngine(WithSoftwareGPU())
	defer e.Close()

	p, err := e.NewProcessor(NewConfig(WithScheme(GPU), WithRadius(1)))
	if err != nil {
		t.Fatal(err)
	}
	src, _ := NewPixelBuffer(4, 4)
	if _, err := p.Blur(src); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "gpu: program linked") {
		t.Errorf("GPU backend did not log through the configured logger: %s", buf.String())
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Logger().Debug("read")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func BenchmarkDisabledLogger(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		Logger().Debug("blur", "radius", 8)
	}
}
