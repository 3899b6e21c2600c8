// Package blur provides an image blur engine with interchangeable
// algorithms and execution backends.
//
// # Overview
//
// Three separable algorithms are available:
//
//   - Box: sliding-window mean with a running sum; alpha is blurred too
//   - Gaussian: fixed-point Gaussian kernel with sigma (radius+1)/2
//   - Stack: triangle-weighted moving sum approximating a Gaussian
//
// Gaussian and Stack keep the alpha channel of every pixel.
//
// Each runs on one of three backends (schemes):
//
//   - Portable: integer kernels, one row or column at a time
//   - Native: the same kernels over eight rows or columns at once,
//     byte-identical to Portable
//   - GPU: two render passes of a WGSL program through gogpu/wgpu, with a
//     software device fallback when no adapter is available
//
// # Quick Start
//
//	cfg := blur.NewConfig(
//	    blur.WithRadius(12),
//	    blur.WithMode(blur.Stack),
//	    blur.WithScheme(blur.Native),
//	    blur.WithParallel(true),
//	)
//	p, err := blur.NewProcessor(cfg)
//	if err != nil {
//	    return err
//	}
//	out, err := p.BlurSurface(img)
//
// # Pixels
//
// A PixelBuffer holds packed, non-premultiplied ARGB (0xAARRGGBB). A mutable
// buffer is blurred in place unless WithForceCopy is set. Surfaces
// (image.Image snapshots) are always copied.
//
// # Engine
//
// An Engine owns the stripe pool used for parallel passes, the task pool
// used by AsyncBlur and the GPU device with its texture and render target
// pools. NewProcessor uses a process-wide engine; create your own with
// NewEngine for isolation and call Close to release it.
//
// # Asynchronous Blur
//
// AsyncBlur returns a Handle immediately. The result reaches a Callback
// through the configured Dispatcher. Cancelling the handle before the blur
// completes guarantees that no callback runs.
//
// # Errors
//
// Invalid input fails immediately: non-positive dimensions, a recycled
// buffer, or parallel execution on the GPU scheme. A GPU program that fails
// to compile, or a host without the vector units Native targets, degrades
// to returning the input unblurred; both are logged at Warn level.
//
// # Logging
//
// Logging is silent by default. See SetLogger.
package blur
