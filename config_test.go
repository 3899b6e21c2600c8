package blur

import (
	"errors"
	"math"
	"testing"
)

func TestNewConfig_Defaults(t *testing.T) {
	c := NewConfig()
	if c.Radius() != DefaultRadius {
		t.Errorf("Radius() = %d, want %d", c.Radius(), DefaultRadius)
	}
	if c.Mode() != Gaussian || c.Scheme() != Portable {
		t.Errorf("Mode, Scheme = %v, %v, want gaussian, portable", c.Mode(), c.Scheme())
	}
	if c.SampleFactor() != 1 {
		t.Errorf("SampleFactor() = %v, want 1", c.SampleFactor())
	}
	if c.ForceCopy() || c.Upscale() || c.Parallel() {
		t.Error("boolean options should default to false")
	}
	if _, ok := c.Dispatcher().(GoDispatcher); !ok {
		t.Errorf("Dispatcher() = %T, want GoDispatcher", c.Dispatcher())
	}
}

func TestNewConfig_Clamping(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		wantRadius int
		wantSample float64
	}{
		{"zero radius", []Option{WithRadius(0)}, 1, 1},
		{"negative radius", []Option{WithRadius(-7)}, 1, 1},
		{"sample below one", []Option{WithSampleFactor(0.25)}, DefaultRadius, 1},
		{"negative sample", []Option{WithSampleFactor(-2)}, DefaultRadius, 1},
		{"NaN sample", []Option{WithSampleFactor(math.NaN())}, DefaultRadius, 1},
		{"kept", []Option{WithRadius(25), WithSampleFactor(2.5)}, 25, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig(tt.opts...)
			if c.Radius() != tt.wantRadius {
				t.Errorf("Radius() = %d, want %d", c.Radius(), tt.wantRadius)
			}
			if c.SampleFactor() != tt.wantSample {
				t.Errorf("SampleFactor() = %v, want %v", c.SampleFactor(), tt.wantSample)
			}
		})
	}
}

func TestNewConfig_Options(t *testing.T) {
	d := InlineDispatcher{}
	c := NewConfig(
		WithMode(Stack),
		WithScheme(Native),
		WithForceCopy(true),
		WithUpscale(true),
		WithTranslate(3, -2),
		WithParallel(true),
		WithWorkers(6),
		WithDispatcher(d),
		WithDispatcher(nil),
	)
	if c.Mode() != Stack || c.Scheme() != Native {
		t.Errorf("Mode, Scheme = %v, %v", c.Mode(), c.Scheme())
	}
	if !c.ForceCopy() || !c.Upscale() || !c.Parallel() {
		t.Error("boolean options not applied")
	}
	if dx, dy := c.Translate(); dx != 3 || dy != -2 {
		t.Errorf("Translate() = %d, %d, want 3, -2", dx, dy)
	}
	if c.Workers() != 6 {
		t.Errorf("Workers() = %d, want 6", c.Workers())
	}
	if c.Dispatcher() == nil {
		t.Error("nil dispatcher should fall back to the default")
	}
}

func TestConfig_ImmutableInProcessor(t *testing.T) {
	e := newTestEngine(t)
	cfg := NewConfig(WithRadius(4))
	p, err := e.NewProcessor(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Options applied to a copy never reach the processor.
	WithRadius(40)(&cfg)
	if p.Config().Radius() != 4 {
		t.Errorf("processor radius = %d, want 4", p.Config().Radius())
	}
}

func TestNewProcessor_Errors(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.NewProcessor(NewConfig(WithScheme(Scheme(9)))); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("unknown scheme error = %v, want ErrUnknownScheme", err)
	}
	if _, err := e.NewProcessor(NewConfig(WithMode(Mode(9)))); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("unknown mode error = %v, want ErrUnknownMode", err)
	}
}

func TestMustProcessor_Panics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnknownScheme) {
			t.Errorf("recover() = %v, want ErrUnknownScheme", r)
		}
	}()
	MustProcessor(NewConfig(WithScheme(Scheme(42))))
	t.Error("MustProcessor did not panic")
}

func TestParseModeAndScheme(t *testing.T) {
	for _, m := range allModes {
		got, err := ParseMode(" " + m.String() + " ")
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	for _, s := range allSchemes {
		got, err := ParseScheme(s.String())
		if err != nil || got != s {
			t.Errorf("ParseScheme(%q) = %v, %v", s.String(), got, err)
		}
	}
	if got, err := ParseMode("STACK"); err != nil || got != Stack {
		t.Errorf("ParseMode is case sensitive: %v, %v", got, err)
	}
	if _, err := ParseMode("motion"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode(motion) error = %v", err)
	}
	if _, err := ParseScheme("opencl"); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("ParseScheme(opencl) error = %v", err)
	}
	if Scheme(7).Valid() || Scheme(7).String() != "Scheme(7)" {
		t.Error("Scheme(7) should be invalid")
	}
}
