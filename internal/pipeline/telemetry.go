package pipeline

import (
	"strconv"
	"strings"
)

// Telemetry names a read-only value the host exposes to expressions.
type Telemetry uint8

const (
	TelemetryNone Telemetry = iota
	RTWidth
	RTHeight
	ResWidth
	ResHeight
	WindowWidth
	WindowHeight
	CursorX
	CursorY
	CursorShowing
	Time
	Hunting
	FrameAnalysis
	VertexCount
	IndexCount
	InstanceCount
	FirstVertex
	FirstIndex
	FirstInstance
	ThreadGroupCountX
	ThreadGroupCountY
	ThreadGroupCountZ
	StereoActive
	Separation
	Convergence
	EyeSeparation
	ScissorLeft
	ScissorTop
	ScissorRight
	ScissorBottom
)

var telemetryNames = map[string]Telemetry{
	"rt_width":             RTWidth,
	"rt_height":            RTHeight,
	"res_width":            ResWidth,
	"res_height":           ResHeight,
	"window_width":         WindowWidth,
	"window_height":        WindowHeight,
	"cursor_x":             CursorX,
	"cursor_y":             CursorY,
	"cursor_showing":       CursorShowing,
	"time":                 Time,
	"hunting":              Hunting,
	"frame_analysis":       FrameAnalysis,
	"vertex_count":         VertexCount,
	"index_count":          IndexCount,
	"instance_count":       InstanceCount,
	"first_vertex":         FirstVertex,
	"first_index":          FirstIndex,
	"first_instance":       FirstInstance,
	"thread_group_count_x": ThreadGroupCountX,
	"thread_group_count_y": ThreadGroupCountY,
	"thread_group_count_z": ThreadGroupCountZ,
	"stereo_active":        StereoActive,
	"separation":           Separation,
	"convergence":          Convergence,
	"eye_separation":       EyeSeparation,
}

var scissorEdges = map[string]Telemetry{
	"left":   ScissorLeft,
	"top":    ScissorTop,
	"right":  ScissorRight,
	"bottom": ScissorBottom,
}

// MaxScissorRects is the number of scissor rectangles a pipeline holds.
const MaxScissorRects = 16

func (t Telemetry) String() string {
	for name, v := range telemetryNames {
		if v == t {
			return name
		}
	}
	for edge, v := range scissorEdges {
		if v == t {
			return "scissor_" + edge
		}
	}
	return "unknown"
}

// ParseTelemetry resolves a telemetry identifier. Indexed scissor edges are
// spelled scissor<N>_left and so on; index is N for those and 0 otherwise.
func ParseTelemetry(name string) (t Telemetry, index int, ok bool) {
	name = strings.ToLower(name)
	if t, ok := telemetryNames[name]; ok {
		return t, 0, true
	}

	rest, found := strings.CutPrefix(name, "scissor")
	if !found {
		return TelemetryNone, 0, false
	}
	digits, edge, found := strings.Cut(rest, "_")
	if !found {
		return TelemetryNone, 0, false
	}
	t, ok = scissorEdges[edge]
	if !ok {
		return TelemetryNone, 0, false
	}
	if digits == "" {
		return t, 0, true
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || n >= MaxScissorRects {
		return TelemetryNone, 0, false
	}
	return t, n, true
}

// Telemetry returns the value of a draw-call derived telemetry item.
func (c DrawCall) Telemetry(t Telemetry) (float32, bool) {
	switch t {
	case VertexCount:
		return float32(c.VertexCount), true
	case IndexCount:
		return float32(c.IndexCount), true
	case InstanceCount:
		return float32(c.InstanceCount), true
	case FirstVertex:
		return float32(c.FirstVertex), true
	case FirstIndex:
		return float32(c.FirstIndex), true
	case FirstInstance:
		return float32(c.FirstInstance), true
	case ThreadGroupCountX:
		return float32(c.ThreadGroups[0]), true
	case ThreadGroupCountY:
		return float32(c.ThreadGroups[1]), true
	case ThreadGroupCountZ:
		return float32(c.ThreadGroups[2]), true
	}
	return 0, false
}
