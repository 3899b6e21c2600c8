// Package gpu implements the GPU blur backend.
//
// A blur runs as two render passes of a fullscreen triangle. The first pass
// samples the source texture along rows into a pooled intermediate texture,
// the second samples the intermediate along columns into the output texture,
// which is then read back into the caller's pixels.
//
// # Devices
//
// Device abstracts the GPU. Two implementations exist:
//
//   - the wgpu device, backed by github.com/gogpu/wgpu (Vulkan, Metal,
//     DX12 or GLES depending on the platform);
//   - the software device, which evaluates the same per-pixel program on the
//     CPU and is used when no adapter is available and in tests.
//
// Programs are WGSL (see shaders/) and are compiled with naga before a device
// sees them. A program that fails to compile is invalid; drawing with it is
// skipped and the input comes back unblurred.
//
// # Resources
//
// Intermediate and output textures and render targets come from bounded pools
// (TexturePool, TargetPool). Each RenderContext owns a display render target
// that never enters a pool and a Renderer that relinks its program only when
// the algorithm changes. Contexts are handed out explicitly with
// Backend.Acquire and returned with Backend.Release.
package gpu
