package vars

import (
	"math"
	"strings"
	"sync/atomic"
)

// Flags qualify a variable declaration.
type Flags uint8

const (
	// Global routes the variable to the process-wide table.
	Global Flags = 1 << iota
	// Persist carries the value across reloads. Implies Global.
	Persist
)

func (f Flags) String() string {
	var parts []string
	if f&Global != 0 {
		parts = append(parts, "global")
	}
	if f&Persist != 0 {
		parts = append(parts, "persist")
	}
	if len(parts) == 0 {
		return "local"
	}
	return strings.Join(parts, " ")
}

// Variable is a single-precision cell. Reads and writes are atomic, so a
// global can be shared by directives running on different host threads.
type Variable struct {
	name  string
	flags Flags
	bits  atomic.Uint32
}

// New creates a variable holding initial.
func New(name string, flags Flags, initial float32) *Variable {
	if flags&Persist != 0 {
		flags |= Global
	}
	v := &Variable{name: name, flags: flags}
	v.Store(initial)
	return v
}

// Name returns the canonical name, including the namespace prefix for
// namespaced globals.
func (v *Variable) Name() string { return v.name }

// Flags returns the declaration flags.
func (v *Variable) Flags() Flags { return v.flags }

// IsGlobal reports whether the variable lives in the global table.
func (v *Variable) IsGlobal() bool { return v.flags&Global != 0 }

// IsPersistent reports whether the variable survives a reload.
func (v *Variable) IsPersistent() bool { return v.flags&Persist != 0 }

// Load returns the current value.
func (v *Variable) Load() float32 {
	return math.Float32frombits(v.bits.Load())
}

// Store replaces the current value.
func (v *Variable) Store(f float32) {
	v.bits.Store(math.Float32bits(f))
}

// Update applies fn to the current value with compare-and-swap and returns
// the value it stored.
func (v *Variable) Update(fn func(old float32) float32) float32 {
	for {
		old := v.bits.Load()
		next := fn(math.Float32frombits(old))
		if v.bits.CompareAndSwap(old, math.Float32bits(next)) {
			return next
		}
	}
}
