package gpu

import (
	"fmt"

	"github.com/gogpu/blur/internal/filter"
)

// RendererState is the lifecycle state of a Renderer.
type RendererState uint8

const (
	// StateUninitialized means no program was linked yet.
	StateUninitialized RendererState = iota
	// StateLinked means a program for the current algorithm is linked.
	StateLinked
	// StateDrawing means a blur is in progress.
	StateDrawing
)

// String returns the state name.
func (s RendererState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLinked:
		return "linked"
	case StateDrawing:
		return "drawing"
	default:
		return fmt.Sprintf("RendererState(%d)", s)
	}
}

// Renderer owns the blur program of one RenderContext.
//
// The program is rebuilt only when the algorithm changes. A program that
// fails to compile stays invalid until the next algorithm change; draws
// with it are skipped.
//
// Renderer is not safe for concurrent use; its context serializes access.
type Renderer struct {
	device  Device
	source  func(filter.Mode) string
	state   RendererState
	mode    filter.Mode
	program *Program
	relink  bool
	links   int
}

// NewRenderer creates an uninitialized renderer for device.
func NewRenderer(device Device) *Renderer {
	return &Renderer{device: device, source: ProgramSource}
}

// State returns the current state.
func (r *Renderer) State() RendererState { return r.state }

// Mode returns the configured algorithm.
func (r *Renderer) Mode() filter.Mode { return r.mode }

// Links returns how many times a program was linked.
func (r *Renderer) Links() int { return r.links }

// Program returns the current program, which may be invalid.
func (r *Renderer) Program() *Program { return r.program }

// SetMode selects the algorithm, flagging a relink if it changed.
func (r *Renderer) SetMode(mode filter.Mode) {
	if r.state == StateUninitialized || mode != r.mode {
		r.mode = mode
		r.relink = true
	}
}

// link rebuilds the program if a relink is pending.
func (r *Renderer) link() {
	if !r.relink {
		return
	}
	r.relink = false
	r.links++

	if r.program != nil {
		r.device.DeleteProgram(r.program)
		r.program = nil
	}

	p, err := r.device.CreateProgram(r.mode, r.source(r.mode))
	if err != nil {
		slogger().Warn("gpu: program link failed, blur disabled", "mode", r.mode.String(), "error", err)
		p = &Program{Mode: r.mode}
	} else {
		slogger().Debug("gpu: program linked", "mode", r.mode.String(), "program", p.ID)
	}
	r.program = p
	r.state = StateLinked
}

// Blur runs both passes over src and leaves the result in the texture
// attached to output. Returns false if the program is invalid and nothing
// was drawn.
func (r *Renderer) Blur(src *Texture, output *RenderTarget, textures *TexturePool, targets *TargetPool, radius int) (bool, error) {
	r.link()
	if !r.program.Valid() {
		return false, nil
	}

	r.state = StateDrawing
	defer func() { r.state = StateLinked }()

	intermediate, err := textures.Get(src.Width, src.Height)
	if err != nil {
		return false, fmt.Errorf("gpu: intermediate texture: %w", err)
	}
	defer textures.Put(intermediate)

	target, err := targets.Get()
	if err != nil {
		return false, fmt.Errorf("gpu: intermediate target: %w", err)
	}
	defer targets.Put(target)
	target.Attach(intermediate)

	if err := r.device.Draw(r.program, target, src, Pass{Radius: radius, Dir: filter.Horizontal}); err != nil {
		return false, fmt.Errorf("gpu: horizontal pass: %w", err)
	}
	if err := r.device.Draw(r.program, output, intermediate, Pass{Radius: radius, Dir: filter.Vertical}); err != nil {
		return false, fmt.Errorf("gpu: vertical pass: %w", err)
	}
	return true, nil
}

// Release deletes the program and returns to the uninitialized state.
func (r *Renderer) Release() {
	if r.program != nil {
		r.device.DeleteProgram(r.program)
		r.program = nil
	}
	r.state = StateUninitialized
	r.relink = false
}
