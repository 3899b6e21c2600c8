package blur

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// nativeSupported reports whether the host has the vector units the Native
// lane kernels are laid out for: SSE2/AVX2 on amd64, ASIMD on arm64.
func nativeSupported() bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return cpu.X86.HasSSE2 || cpu.X86.HasAVX2
	case "arm64":
		return cpu.ARM64.HasASIMD
	default:
		return false
	}
}
