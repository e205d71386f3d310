package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage is a programmable shader stage.
type Stage uint8

const (
	StageNone Stage = iota
	StageVertex
	StageHull
	StageDomain
	StageGeometry
	StagePixel
	StageCompute
)

var stageNames = map[Stage]string{
	StageVertex:   "vs",
	StageHull:     "hs",
	StageDomain:   "ds",
	StageGeometry: "gs",
	StagePixel:    "ps",
	StageCompute:  "cs",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return ""
}

// ParseStage parses a two-letter stage prefix.
func ParseStage(s string) (Stage, bool) {
	s = strings.ToLower(s)
	for st, n := range stageNames {
		if n == s {
			return st, true
		}
	}
	return StageNone, false
}

// SlotKind identifies the kind of binding point.
type SlotKind uint8

const (
	// KindShader is the shader bound to a stage (used by filter lookups).
	KindShader SlotKind = iota
	KindConstantBuffer
	KindShaderResource
	KindUnorderedAccess
	KindRenderTarget
	KindDepthStencil
	KindVertexBuffer
	KindIndexBuffer
)

// Slot is a pipeline binding point.
type Slot struct {
	Stage Stage
	Kind  SlotKind
	Index int
}

const (
	// MaxRenderTargets is the number of simultaneous render targets.
	MaxRenderTargets = 8
	maxSlotIndex     = 128
)

// String formats the slot in locator syntax.
func (s Slot) String() string {
	switch s.Kind {
	case KindShader:
		return s.Stage.String()
	case KindConstantBuffer:
		return fmt.Sprintf("%s-cb%d", s.Stage, s.Index)
	case KindShaderResource:
		return fmt.Sprintf("%s-t%d", s.Stage, s.Index)
	case KindUnorderedAccess:
		return fmt.Sprintf("%s-u%d", s.Stage, s.Index)
	case KindRenderTarget:
		return fmt.Sprintf("o%d", s.Index)
	case KindDepthStencil:
		return "oD"
	case KindVertexBuffer:
		return fmt.Sprintf("vb%d", s.Index)
	case KindIndexBuffer:
		return "ib"
	}
	return "?"
}

// IsResource reports whether a resource can be bound at the slot.
func (s Slot) IsResource() bool { return s.Kind != KindShader }

func parseIndex(s string, limit int) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= limit {
		return 0, false
	}
	return n, true
}

// ParseSlot parses the binding point part of the locator syntax: "vs",
// "ps-t0", "vs-cb3", "cs-u1", "o0", "oD", "vb0" and "ib". Matching is
// case-insensitive.
func ParseSlot(text string) (Slot, bool) {
	s := strings.ToLower(strings.TrimSpace(text))

	switch {
	case s == "od":
		return Slot{Kind: KindDepthStencil}, true
	case s == "ib":
		return Slot{Kind: KindIndexBuffer}, true
	case strings.HasPrefix(s, "vb"):
		n, ok := parseIndex(s[2:], 32)
		return Slot{Kind: KindVertexBuffer, Index: n}, ok
	case strings.HasPrefix(s, "o"):
		n, ok := parseIndex(s[1:], MaxRenderTargets)
		return Slot{Kind: KindRenderTarget, Index: n}, ok
	}

	stageText, rest, hasSlot := strings.Cut(s, "-")
	stage, ok := ParseStage(stageText)
	if !ok {
		return Slot{}, false
	}
	if !hasSlot {
		return Slot{Stage: stage, Kind: KindShader}, true
	}

	var kind SlotKind
	var digits string
	switch {
	case strings.HasPrefix(rest, "cb"):
		kind, digits = KindConstantBuffer, rest[2:]
	case strings.HasPrefix(rest, "t"):
		kind, digits = KindShaderResource, rest[1:]
	case strings.HasPrefix(rest, "u"):
		if stage != StagePixel && stage != StageCompute {
			return Slot{}, false
		}
		kind, digits = KindUnorderedAccess, rest[1:]
	default:
		return Slot{}, false
	}
	n, ok := parseIndex(digits, maxSlotIndex)
	if !ok {
		return Slot{}, false
	}
	return Slot{Stage: stage, Kind: kind, Index: n}, true
}
