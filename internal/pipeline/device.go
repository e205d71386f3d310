package pipeline

// Resource is a host resource handle.
type Resource interface {
	Desc() Desc
	// Label is a human readable identifier used in logs and dumps.
	Label() string
}

// View is a host view handle (render target, depth stencil, shader resource
// or unordered access view) over a resource.
type View interface {
	Resource() Resource
}

// DrawKind is the native call a DrawCall describes.
type DrawKind uint8

const (
	DrawNone DrawKind = iota
	Draw
	DrawIndexed
	DrawInstanced
	DrawIndexedInstanced
	Dispatch
)

func (k DrawKind) String() string {
	switch k {
	case Draw:
		return "draw"
	case DrawIndexed:
		return "drawindexed"
	case DrawInstanced:
		return "drawinstanced"
	case DrawIndexedInstanced:
		return "drawindexedinstanced"
	case Dispatch:
		return "dispatch"
	}
	return "none"
}

// DrawCall holds the parameters of the intercepted (or injected) call.
type DrawCall struct {
	Kind          DrawKind
	VertexCount   uint32
	IndexCount    uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstIndex    uint32
	FirstInstance uint32
	BaseVertex    int32
	ThreadGroups  [3]uint32
}

// BindOptions modify how a resource is bound to a slot.
type BindOptions struct {
	SetViewport bool
	NoViewCache bool
	Raw         bool
}

// CopyMode selects how Device.Copy transfers data.
type CopyMode uint8

const (
	CopyFull CopyMode = iota
	CopyResolveMSAA
	CopyStereo2Mono
)

// ClearRequest describes a view clear.
type ClearRequest struct {
	Values  [4]float32
	Depth   bool
	Stencil bool
	// Int clears an unordered access view with integer values.
	Int bool
}

// FilterMatch is the result of an override filter lookup.
type FilterMatch struct {
	Matched  bool
	HasIndex bool
	Index    float32
}

// Value returns the number a filter lookup evaluates to: 0 without a match,
// 1 for a match without a filter index, otherwise the index.
func (m FilterMatch) Value() float32 {
	switch {
	case !m.Matched:
		return 0
	case !m.HasIndex:
		return 1
	}
	return m.Index
}

// State is an opaque pipeline state snapshot.
type State any

// Bindings reads and writes binding points.
type Bindings interface {
	Bound(slot Slot) Resource
	Bind(slot Slot, res Resource, opts BindOptions)
	BackBuffer() Resource
}

// Factory creates resources.
type Factory interface {
	CreateResource(desc Desc, label string) (Resource, error)
}

// Commands issues GPU work.
type Commands interface {
	Copy(dst, src Resource, mode CopyMode) error
	Clear(res Resource, req ClearRequest) error
	Draw(call DrawCall)
	SaveState() State
	RestoreState(State)
	DrawOverlay()
}

// Inspector answers the read-only questions expressions ask.
type Inspector interface {
	Telemetry(t Telemetry, index int) float32
	Param(slot, component int) float32
	SetParam(slot, component int, v float32)
	// FilterIndex looks up the override matched by the shader or resource
	// currently bound at slot.
	FilterIndex(slot Slot) FilterMatch
	// MatchOverrides returns the names of the texture override sections
	// matching res, in priority order.
	MatchOverrides(res Resource) []string
}

// Device is everything the engine needs from the host.
type Device interface {
	Bindings
	Factory
	Commands
	Inspector
}
