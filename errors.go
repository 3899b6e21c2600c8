package blur

import (
	"errors"

	"github.com/gogpu/blur/internal/parallel"
)

var (
	// ErrInvalidDimensions is returned for buffers with a non-positive width
	// or height, or with fewer pixels than width*height.
	ErrInvalidDimensions = errors.New("blur: invalid dimensions")

	// ErrRecycled is returned when blurring a buffer after Recycle.
	ErrRecycled = errors.New("blur: buffer is recycled")

	// ErrNilBuffer is returned when a nil buffer or image is passed.
	ErrNilBuffer = errors.New("blur: nil buffer")

	// ErrUnsupported is returned by backends that cannot honor a request,
	// such as parallel execution on the GPU backend.
	ErrUnsupported = errors.New("blur: unsupported operation")

	// ErrUnknownScheme is returned for an unrecognized backend scheme.
	ErrUnknownScheme = errors.New("blur: unknown scheme")

	// ErrUnknownMode is returned for an unrecognized blur mode.
	ErrUnknownMode = errors.New("blur: unknown mode")

	// ErrEngineClosed is returned when using a closed Engine.
	ErrEngineClosed = errors.New("blur: engine closed")
)

// PanicError reports a panic recovered inside an asynchronous blur.
// It is delivered to Callback.OnFailed.
type PanicError = parallel.PanicError
