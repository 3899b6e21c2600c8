package blur

import (
	"fmt"
	"strings"

	"github.com/gogpu/blur/internal/filter"
)

// Mode selects the blur algorithm.
type Mode uint8

const (
	// Box is a sliding-window mean. Alpha is blurred with the color.
	Box Mode = iota
	// Gaussian is a weighted sum with sigma (radius+1)/2. Alpha is kept.
	Gaussian
	// Stack is a triangle-weighted moving sum. Alpha is kept.
	Stack
)

// String returns the mode name.
func (m Mode) String() string {
	return filter.Mode(m).String()
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return filter.Mode(m).Valid()
}

func (m Mode) filter() filter.Mode {
	return filter.Mode(m)
}

// ParseMode parses a mode name as returned by String, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "box":
		return Box, nil
	case "gaussian":
		return Gaussian, nil
	case "stack":
		return Stack, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Scheme selects the execution backend.
type Scheme uint8

const (
	// Portable runs the integer kernels one row or column at a time.
	Portable Scheme = iota
	// Native runs the same kernels over eight rows or columns at once.
	// The output is identical to Portable.
	Native
	// GPU renders the blur with a two-pass shader program.
	GPU
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case Portable:
		return "portable"
	case Native:
		return "native"
	case GPU:
		return "gpu"
	default:
		return fmt.Sprintf("Scheme(%d)", s)
	}
}

// Valid reports whether s is a known scheme.
func (s Scheme) Valid() bool {
	return s <= GPU
}

// ParseScheme parses a scheme name as returned by String, ignoring case.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portable":
		return Portable, nil
	case "native":
		return Native, nil
	case "gpu":
		return GPU, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}
