package main

import (
	"fmt"
	"strconv"

	"github.com/gogpu/blur"
)

// settings are the user-adjustable blur parameters.
type settings struct {
	radius int
	mode   blur.Mode
	scheme blur.Scheme
	sample float64
}

func defaultSettings() settings {
	return settings{radius: 6, mode: blur.Gaussian, scheme: blur.Portable, sample: 1}
}

// loadSettings reads BLUR_RADIUS, BLUR_MODE, BLUR_SCHEME and BLUR_SAMPLE.
// Unset variables keep their defaults.
func loadSettings(getenv func(string) string) (settings, error) {
	s := defaultSettings()
	if v := getenv("BLUR_RADIUS"); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("BLUR_RADIUS: %w", err)
		}
		s.radius = r
	}
	if v := getenv("BLUR_MODE"); v != "" {
		m, err := blur.ParseMode(v)
		if err != nil {
			return s, fmt.Errorf("BLUR_MODE: %w", err)
		}
		s.mode = m
	}
	if v := getenv("BLUR_SCHEME"); v != "" {
		sc, err := blur.ParseScheme(v)
		if err != nil {
			return s, fmt.Errorf("BLUR_SCHEME: %w", err)
		}
		s.scheme = sc
	}
	if v := getenv("BLUR_SAMPLE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return s, fmt.Errorf("BLUR_SAMPLE: %w", err)
		}
		s.sample = f
	}
	return s, nil
}

func (s settings) config(d blur.Dispatcher) blur.Config {
	return blur.NewConfig(
		blur.WithRadius(s.radius),
		blur.WithMode(s.mode),
		blur.WithScheme(s.scheme),
		blur.WithSampleFactor(s.sample),
		blur.WithUpscale(true),
		blur.WithForceCopy(true),
		blur.WithParallel(s.scheme != blur.GPU),
		blur.WithDispatcher(d),
	)
}

func (s settings) String() string {
	return fmt.Sprintf("%s/%s r=%d sample=%.1f", s.mode, s.scheme, s.radius, s.sample)
}
