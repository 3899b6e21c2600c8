package gpu

import "errors"

var (
	// ErrInvalidDimensions is returned for textures or targets with a
	// non-positive width or height.
	ErrInvalidDimensions = errors.New("gpu: invalid dimensions")

	// ErrInvalidProgram is returned when drawing with a program that failed
	// to compile or link.
	ErrInvalidProgram = errors.New("gpu: invalid program")

	// ErrNoAdapter is returned when no GPU adapter could be opened.
	ErrNoAdapter = errors.New("gpu: no adapter available")

	// ErrReleased is returned when using a released device or backend.
	ErrReleased = errors.New("gpu: released")

	// ErrNoTexture is returned when drawing into a render target that has no
	// texture attached.
	ErrNoTexture = errors.New("gpu: render target has no texture")
)
