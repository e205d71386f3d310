package config

import (
	"fmt"
	"slices"
	"strings"
)

// Model is the unified, format-agnostic representation of a workspace.
type Model struct {
	Settings  Settings
	Sections  []*Section
	Resources []*Resource
	Replay    *Replay
}

// Settings are the engine options a workspace can set. Zero values leave
// the engine defaults in place.
type Settings struct {
	// Namespace qualifies the globals declared by sections that do not set
	// their own.
	Namespace      string
	NegativeTruth  bool
	RecursionLimit int
	ParamSlots     int
	PoolCapacity   int
}

// Section is one named directive section.
type Section struct {
	Name      string
	Namespace string
	// Body holds the directive lines. File and Line locate its first line
	// for error messages.
	Body string
	File string
	Line int
	// Hash and FilterIndex register a texture override with the host.
	Hash        string
	FilterIndex *float32
}

// Resource declares a custom resource. Unset dimensions are taken from the
// first resource copied into it.
type Resource struct {
	Name        string
	Type        string
	Width       uint32
	Height      uint32
	Format      string
	ByteSize    uint64
	SampleCount uint32
}

// Replay is a scripted sequence of host events used to drive the engine
// without a real graphics pipeline.
type Replay struct {
	Frames   int
	Textures []*Texture
	Events   []*Event
}

// Texture is a resource the replay host creates and binds before the first
// event.
type Texture struct {
	Name   string
	Hash   string
	Width  uint32
	Height uint32
	Format string
	Bind   []string
}

// Event kinds.
const (
	EventDraw     = "draw"
	EventDispatch = "dispatch"
	EventTexture  = "texture"
	EventView     = "view"
	EventPresent  = "present"
)

// Event is one host callback in a replayed frame.
type Event struct {
	Kind    string
	Section string
	// Texture names the replay texture "this" refers to for texture and
	// view events.
	Texture   string
	Call      Call
	Telemetry map[string]float32
}

// Call holds the parameters of a replayed draw or dispatch.
type Call struct {
	VertexCount   uint32
	IndexCount    uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstIndex    uint32
	FirstInstance uint32
	BaseVertex    int32
	ThreadGroups  [3]uint32
}

// Validate checks cross references inside the model.
func (m *Model) Validate() error {
	var errs []string
	seen := make(map[string]bool)
	for _, s := range m.Sections {
		key := strings.ToLower(s.Name)
		if seen[key] {
			errs = append(errs, fmt.Sprintf("section %q is defined more than once", s.Name))
		}
		seen[key] = true
	}

	if m.Replay != nil {
		textures := make(map[string]bool)
		for _, t := range m.Replay.Textures {
			textures[t.Name] = true
		}
		kinds := []string{EventDraw, EventDispatch, EventTexture, EventView, EventPresent}
		for i, e := range m.Replay.Events {
			switch {
			case !slices.Contains(kinds, e.Kind):
				errs = append(errs, fmt.Sprintf("replay event %d: unknown kind %q", i, e.Kind))
			case e.Kind != EventPresent && e.Section == "":
				errs = append(errs, fmt.Sprintf("replay event %d (%s): section is required", i, e.Kind))
			case (e.Kind == EventTexture || e.Kind == EventView) && !textures[e.Texture]:
				errs = append(errs, fmt.Sprintf("replay event %d (%s): unknown texture %q", i, e.Kind, e.Texture))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
