// Package filter implements the separable blur kernels of the engine.
//
// Images are packed ARGB (0xAARRGGBB) uint32 slices in row-major order.
// Every algorithm runs as two one-dimensional passes: a horizontal pass
// over a range of rows, then a vertical pass over a range of columns.
// Passes read a line into scratch memory and write the result back, so a
// pass over one stripe never observes another stripe's output.
//
// All arithmetic is integer:
//   - Box: running sums divided through a lookup table of size 256*(2r+1)
//   - Gaussian: 16-bit fixed-point weights summing to exactly 1<<16
//   - Stack: triangle-weighted running sums divided by (r+1)^2
//
// A uniform image is therefore a fixed point of every algorithm, and the
// wide kernels in lanes.go produce byte-identical output to the scalar ones.
//
// Box blurs all four channels. Gaussian and Stack preserve source alpha.
package filter
