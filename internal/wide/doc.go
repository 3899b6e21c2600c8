// Package wide provides SIMD-friendly wide types for batch pixel processing.
//
// The types are fixed-size arrays processed with simple loops so that the
// Go compiler can auto-vectorize them on SSE, AVX and NEON targets. The
// native blur backend uses them to run one blur line per lane, eight lines
// at a time.
//
// # Wide Types
//
// I32x8: 8 int32 values for running sums and fixed-point accumulation.
//
// # ARGB8
//
// ARGB8 holds 8 packed ARGB pixels in Structure-of-Arrays (SoA) layout:
//
//	A: [A0, A1, ..., A7]
//	R: [R0, R1, ..., R7]
//	G: [G0, G1, ..., G7]
//	B: [B0, B1, ..., B7]
//
// # Design Philosophy
//
//   - Use simple loops over fixed-size arrays for auto-vectorization
//   - Avoid unsafe and assembly - rely on compiler optimization
//   - Integer-only arithmetic so results match the scalar kernels exactly
package wide
