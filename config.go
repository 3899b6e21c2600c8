package blur

// Config is an immutable blur configuration built with NewConfig.
// The zero value is not valid; use NewConfig.
type Config struct {
	radius       int
	mode         Mode
	scheme       Scheme
	sampleFactor float64
	forceCopy    bool
	upscale      bool
	translateX   int
	translateY   int
	parallel     bool
	workers      int
	dispatcher   Dispatcher
}

// Option configures a Config.
//
// Example:
//
//	cfg := blur.NewConfig(
//	    blur.WithRadius(8),
//	    blur.WithMode(blur.Stack),
//	    blur.WithScheme(blur.Native),
//	    blur.WithSampleFactor(2),
//	    blur.WithUpscale(true),
//	)
type Option func(*Config)

// Default configuration values.
const (
	DefaultRadius       = 10
	DefaultSampleFactor = 1.0
)

// NewConfig builds a Config from opts. Radius is clamped to at least 1 and
// the sample factor to at least 1.0.
func NewConfig(opts ...Option) Config {
	c := Config{
		radius:       DefaultRadius,
		mode:         Gaussian,
		scheme:       Portable,
		sampleFactor: DefaultSampleFactor,
		dispatcher:   GoDispatcher{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.radius < 1 {
		c.radius = 1
	}
	if !(c.sampleFactor >= 1) {
		c.sampleFactor = 1
	}
	if c.workers < 0 {
		c.workers = 0
	}
	if c.dispatcher == nil {
		c.dispatcher = GoDispatcher{}
	}
	return c
}

// WithRadius sets the blur radius in pixels.
func WithRadius(r int) Option {
	return func(c *Config) { c.radius = r }
}

// WithMode sets the blur algorithm.
func WithMode(m Mode) Option {
	return func(c *Config) { c.mode = m }
}

// WithScheme sets the execution backend.
func WithScheme(s Scheme) Option {
	return func(c *Config) { c.scheme = s }
}

// WithSampleFactor downscales the input by f before blurring.
// Large radii blur much faster on a downscaled input.
func WithSampleFactor(f float64) Option {
	return func(c *Config) { c.sampleFactor = f }
}

// WithForceCopy blurs a copy, leaving the caller's buffer untouched even if
// it is mutable.
func WithForceCopy(v bool) Option {
	return func(c *Config) { c.forceCopy = v }
}

// WithUpscale scales a downsampled result back to the input size.
func WithUpscale(v bool) Option {
	return func(c *Config) { c.upscale = v }
}

// WithTranslate offsets sampling so that output pixel (x, y) reads input
// pixel (x+dx, y+dy). Pixels outside the input are transparent.
func WithTranslate(dx, dy int) Option {
	return func(c *Config) {
		c.translateX = dx
		c.translateY = dy
	}
}

// WithParallel selects stripe-parallel execution on CPU backends.
// The GPU backend rejects parallel execution with ErrUnsupported.
func WithParallel(v bool) Option {
	return func(c *Config) { c.parallel = v }
}

// WithWorkers sets the number of stripes per pass. Zero uses the engine's
// stripe worker count.
func WithWorkers(n int) Option {
	return func(c *Config) { c.workers = n }
}

// WithDispatcher sets where asynchronous callbacks run.
// The default runs each callback on a new goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Config) { c.dispatcher = d }
}

// Radius returns the blur radius.
func (c Config) Radius() int { return c.radius }

// Mode returns the blur algorithm.
func (c Config) Mode() Mode { return c.mode }

// Scheme returns the execution backend.
func (c Config) Scheme() Scheme { return c.scheme }

// SampleFactor returns the downscale factor.
func (c Config) SampleFactor() float64 { return c.sampleFactor }

// ForceCopy reports whether the input is always copied.
func (c Config) ForceCopy() bool { return c.forceCopy }

// Upscale reports whether a downsampled result is scaled back up.
func (c Config) Upscale() bool { return c.upscale }

// Translate returns the sampling offset.
func (c Config) Translate() (dx, dy int) { return c.translateX, c.translateY }

// Parallel reports whether CPU backends split work into stripes.
func (c Config) Parallel() bool { return c.parallel }

// Workers returns the stripe count override, or 0.
func (c Config) Workers() int { return c.workers }

// Dispatcher returns where asynchronous callbacks run.
func (c Config) Dispatcher() Dispatcher { return c.dispatcher }

func (c Config) downsamples() bool { return c.sampleFactor > 1 }
