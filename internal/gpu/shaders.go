package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/blur/internal/filter"
)

// Embedded WGSL sources. Each algorithm file supplies the weight and finish
// functions used by the shared pass in blur.wgsl.

//go:embed shaders/blur.wgsl
var blurShaderSource string

//go:embed shaders/box.wgsl
var boxShaderSource string

//go:embed shaders/gaussian.wgsl
var gaussianShaderSource string

//go:embed shaders/stack.wgsl
var stackShaderSource string

// Shader entry points.
const (
	vertexEntry   = "vs_main"
	fragmentEntry = "fs_main"
)

// ProgramSource returns the complete WGSL program for mode.
func ProgramSource(mode filter.Mode) string {
	var algo string
	switch mode {
	case filter.Gaussian:
		algo = gaussianShaderSource
	case filter.Stack:
		algo = stackShaderSource
	default:
		algo = boxShaderSource
	}
	return algo + "\n" + blurShaderSource
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile program: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
