package gpu

import (
	"fmt"
	"sync"
)

// RenderContext is the per-caller GPU state: a renderer and the display
// target blur results are drawn into. A context is used by one goroutine at
// a time, between Acquire and Release.
type RenderContext struct {
	id       uint64
	renderer *Renderer
	display  *RenderTarget
}

// ID returns the context id.
func (c *RenderContext) ID() uint64 { return c.id }

// Renderer returns the context's renderer.
func (c *RenderContext) Renderer() *Renderer { return c.renderer }

// contextMap owns every RenderContext of a backend, keyed by id.
// Released contexts are kept idle and handed out again by acquire.
type contextMap struct {
	mu     sync.Mutex
	device Device
	nextID uint64
	all    map[uint64]*RenderContext
	idle   []*RenderContext
	closed bool
}

func newContextMap(device Device) *contextMap {
	return &contextMap{device: device, all: make(map[uint64]*RenderContext)}
}

func (m *contextMap) acquire() (*RenderContext, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrReleased
	}
	if n := len(m.idle); n > 0 {
		c := m.idle[n-1]
		m.idle = m.idle[:n-1]
		m.mu.Unlock()
		return c, nil
	}
	m.nextID++
	id := m.nextID
	m.mu.Unlock()

	display, err := m.device.CreateRenderTarget()
	if err != nil {
		return nil, fmt.Errorf("gpu: display target: %w", err)
	}
	display.display = true
	c := &RenderContext{id: id, renderer: NewRenderer(m.device), display: display}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.destroy(c)
		return nil, ErrReleased
	}
	m.all[id] = c
	slogger().Debug("gpu: render context created", "context", id, "device", m.device.Name())
	return c, nil
}

func (m *contextMap) release(c *RenderContext) {
	if c == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.all[c.id]; !ok {
		return
	}
	if m.closed {
		delete(m.all, c.id)
		m.destroy(c)
		return
	}
	for _, idle := range m.idle {
		if idle == c {
			return
		}
	}
	m.idle = append(m.idle, c)
}

// close destroys idle contexts. Contexts still acquired are destroyed when
// released.
func (m *contextMap) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, c := range m.idle {
		delete(m.all, c.id)
		m.destroy(c)
	}
	m.idle = nil
}

func (m *contextMap) destroy(c *RenderContext) {
	c.renderer.Release()
	c.display.texture = nil
	m.device.DeleteRenderTarget(c.display)
}

func (m *contextMap) len() (total, idle int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.all), len(m.idle)
}
