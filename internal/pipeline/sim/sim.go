// Package sim is an in-memory pipeline.Device. It records every operation
// the engine performs so tests and replays can inspect the outcome without
// a GPU.
package sim

import (
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/specialistvlad/cmdlist/internal/names"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
)

// Texture is a simulated resource. Its "contents" are the last clear values
// plus the label of the last copy source, which is enough to follow data
// through a configuration.
type Texture struct {
	label string
	hash  string
	desc  pipeline.Desc

	mu       sync.Mutex
	contents [4]float32
	source   string
}

// NewTexture creates a host-owned texture. hash is the value texture
// overrides are matched against.
func NewTexture(label, hash string, desc pipeline.Desc) *Texture {
	return &Texture{label: label, hash: names.Fold(hash), desc: desc}
}

func (t *Texture) Desc() pipeline.Desc { return t.desc }
func (t *Texture) Label() string       { return t.label }
func (t *Texture) Hash() string        { return t.hash }

// Contents returns the simulated data.
func (t *Texture) Contents() [4]float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.contents
}

// Source returns the label of the resource last copied into t.
func (t *Texture) Source() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.source
}

// View is a simulated view.
type View struct{ res pipeline.Resource }

// NewView wraps res in a view.
func NewView(res pipeline.Resource) *View { return &View{res: res} }

func (v *View) Resource() pipeline.Resource { return v.res }

// Override is a texture override registered with the device.
type Override struct {
	Section     string
	FilterIndex *float32
}

type telemetryKey struct {
	t     pipeline.Telemetry
	index int
}

// Options configure a Device.
type Options struct {
	Width      uint32
	Height     uint32
	ParamSlots int
}

// Device implements pipeline.Device in memory. It is safe for concurrent use.
type Device struct {
	mu         sync.Mutex
	start      time.Time
	bindings   map[pipeline.Slot]pipeline.Resource
	shaders    map[pipeline.Stage]pipeline.FilterMatch
	overrides  map[string][]Override
	params     [][4]float32
	telemetry  map[telemetryKey]float32
	backBuffer *Texture
	draws      []pipeline.DrawCall
	ops        []string
	created    int
	overlays   int
}

// ErrNotSimulated is returned for resources that were not created by a sim
// Device.
var ErrNotSimulated = errors.New("resource is not a simulated texture")

// New creates a device with a back buffer of the given size.
func New(opts Options) *Device {
	if opts.Width == 0 {
		opts.Width = 1920
	}
	if opts.Height == 0 {
		opts.Height = 1080
	}
	if opts.ParamSlots <= 0 {
		opts.ParamSlots = 8
	}
	d := &Device{
		start:     time.Now(),
		bindings:  make(map[pipeline.Slot]pipeline.Resource),
		shaders:   make(map[pipeline.Stage]pipeline.FilterMatch),
		overrides: make(map[string][]Override),
		params:    make([][4]float32, opts.ParamSlots),
		telemetry: make(map[telemetryKey]float32),
	}
	d.backBuffer = NewTexture("bb", "", pipeline.Texture2D(opts.Width, opts.Height, gputypes.TextureFormatBGRA8Unorm))
	d.telemetry[telemetryKey{t: pipeline.ResWidth}] = float32(opts.Width)
	d.telemetry[telemetryKey{t: pipeline.ResHeight}] = float32(opts.Height)
	d.telemetry[telemetryKey{t: pipeline.WindowWidth}] = float32(opts.Width)
	d.telemetry[telemetryKey{t: pipeline.WindowHeight}] = float32(opts.Height)
	return d
}

func (d *Device) record(format string, args ...any) {
	d.ops = append(d.ops, fmt.Sprintf(format, args...))
}

func label(res pipeline.Resource) string {
	if res == nil {
		return "null"
	}
	return res.Label()
}

// Bound implements pipeline.Bindings.
func (d *Device) Bound(slot pipeline.Slot) pipeline.Resource {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bindings[slot]
}

// Bind implements pipeline.Bindings.
func (d *Device) Bind(slot pipeline.Slot, res pipeline.Resource, opts pipeline.BindOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res == nil {
		delete(d.bindings, slot)
	} else {
		d.bindings[slot] = res
	}
	if opts.SetViewport && res != nil {
		size := res.Desc().Size
		d.record("viewport %dx%d", size.Width, size.Height)
	}
	d.record("bind %s = %s", slot, label(res))
}

// BackBuffer implements pipeline.Bindings.
func (d *Device) BackBuffer() pipeline.Resource { return d.backBuffer }

// CreateResource implements pipeline.Factory.
func (d *Device) CreateResource(desc pipeline.Desc, name string) (pipeline.Resource, error) {
	if desc.Kind == pipeline.KindTexture2D && (desc.Size.Width == 0 || desc.Size.Height == 0) {
		return nil, fmt.Errorf("cannot create %s: empty texture", name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.created++
	d.record("create %s %s", name, desc)
	return NewTexture(name, "", desc), nil
}

// Copy implements pipeline.Commands.
func (d *Device) Copy(dst, src pipeline.Resource, mode pipeline.CopyMode) error {
	to, ok := dst.(*Texture)
	if !ok {
		return ErrNotSimulated
	}
	from, ok := src.(*Texture)
	if !ok {
		return ErrNotSimulated
	}
	contents := from.Contents()

	to.mu.Lock()
	to.contents = contents
	to.source = from.label
	to.mu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	switch mode {
	case pipeline.CopyResolveMSAA:
		d.record("resolve %s <- %s", to.label, from.label)
	case pipeline.CopyStereo2Mono:
		d.record("stereo2mono %s <- %s", to.label, from.label)
	default:
		d.record("copy %s <- %s", to.label, from.label)
	}
	return nil
}

// Clear implements pipeline.Commands.
func (d *Device) Clear(res pipeline.Resource, req pipeline.ClearRequest) error {
	tex, ok := res.(*Texture)
	if !ok {
		return ErrNotSimulated
	}
	tex.mu.Lock()
	tex.contents = req.Values
	tex.mu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case req.Depth || req.Stencil:
		d.record("clear %s depth=%t stencil=%t %v", tex.label, req.Depth, req.Stencil, req.Values[0])
	default:
		d.record("clear %s %v", tex.label, req.Values)
	}
	return nil
}

// Draw implements pipeline.Commands.
func (d *Device) Draw(call pipeline.DrawCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws = append(d.draws, call)
	d.record("%s", call.Kind)
}

// SaveState implements pipeline.Commands.
func (d *Device) SaveState() pipeline.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("save state")
	return maps.Clone(d.bindings)
}

// RestoreState implements pipeline.Commands.
func (d *Device) RestoreState(s pipeline.State) {
	saved, ok := s.(map[pipeline.Slot]pipeline.Resource)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bindings = maps.Clone(saved)
	d.record("restore state")
}

// DrawOverlay implements pipeline.Commands.
func (d *Device) DrawOverlay() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overlays++
	d.record("overlay")
}

// Telemetry implements pipeline.Inspector. Time defaults to the seconds
// elapsed since the device was created.
func (d *Device) Telemetry(t pipeline.Telemetry, index int) float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := d.telemetry[telemetryKey{t: t, index: index}]; ok {
		return v
	}
	if t == pipeline.Time {
		return float32(time.Since(d.start).Seconds())
	}
	return 0
}

// SetTelemetry overrides a telemetry value.
func (d *Device) SetTelemetry(t pipeline.Telemetry, index int, v float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.telemetry[telemetryKey{t: t, index: index}] = v
}

// Param implements pipeline.Inspector.
func (d *Device) Param(slot, component int) float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slot < 0 || slot >= len(d.params) || component < 0 || component > 3 {
		return 0
	}
	return d.params[slot][component]
}

// SetParam implements pipeline.Inspector.
func (d *Device) SetParam(slot, component int, v float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slot < 0 || slot >= len(d.params) || component < 0 || component > 3 {
		return
	}
	d.params[slot][component] = v
}

// SetShaderFilter registers the shader override matched at stage.
func (d *Device) SetShaderFilter(stage pipeline.Stage, m pipeline.FilterMatch) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shaders[stage] = m
}

// AddOverride registers a texture override section for resources with the
// given hash.
func (d *Device) AddOverride(hash string, o Override) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := names.Fold(hash)
	d.overrides[key] = append(d.overrides[key], o)
}

// ClearOverrides drops every registered texture override. A host calls it
// before registering the overrides of a reloaded configuration.
func (d *Device) ClearOverrides() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.overrides)
}

// FilterIndex implements pipeline.Inspector.
func (d *Device) FilterIndex(slot pipeline.Slot) pipeline.FilterMatch {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slot.Kind == pipeline.KindShader {
		return d.shaders[slot.Stage]
	}
	tex, ok := d.bindings[slot].(*Texture)
	if !ok || tex.hash == "" {
		return pipeline.FilterMatch{}
	}
	list := d.overrides[tex.hash]
	if len(list) == 0 {
		return pipeline.FilterMatch{}
	}
	m := pipeline.FilterMatch{Matched: true}
	if list[0].FilterIndex != nil {
		m.HasIndex = true
		m.Index = *list[0].FilterIndex
	}
	return m
}

// MatchOverrides implements pipeline.Inspector.
func (d *Device) MatchOverrides(res pipeline.Resource) []string {
	tex, ok := res.(*Texture)
	if !ok || tex.hash == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.overrides[tex.hash]
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, o.Section)
	}
	return out
}

// Draws returns every draw recorded so far.
func (d *Device) Draws() []pipeline.DrawCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]pipeline.DrawCall(nil), d.draws...)
}

// Ops returns the operation log.
func (d *Device) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ops...)
}

// Created returns how many resources the device has created.
func (d *Device) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

// Overlays returns how many times the overlay was drawn.
func (d *Device) Overlays() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlays
}

// Reset clears the recorded operations and draws.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = nil
	d.draws = nil
}

var _ pipeline.Device = (*Device)(nil)
