package command

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/cmdlist/internal/names"
	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/resource"
)

// LocatorKind is what a locator points at.
type LocatorKind uint8

const (
	LocSlot LocatorKind = iota
	LocCustom
	LocThis
	LocNull
	LocBackBuffer
)

// Locator identifies a copy source or destination.
type Locator struct {
	Kind   LocatorKind
	Slot   pipeline.Slot
	Custom *resource.Custom
	text   string
}

// ParseLocator parses a binding point (ps-t0, o1, oD, vb0, ib, ...), a
// custom resource (Resource<Name>) or one of the reserved names this, null
// and bb.
func ParseLocator(text string, store *resource.Store) (Locator, error) {
	text = strings.TrimSpace(text)
	switch strings.ToLower(text) {
	case "this":
		return Locator{Kind: LocThis, text: "this"}, nil
	case "null":
		return Locator{Kind: LocNull, text: "null"}, nil
	case "bb":
		return Locator{Kind: LocBackBuffer, text: "bb"}, nil
	}

	if names.HasPrefix(text, "Resource") && len(text) > len("Resource") {
		name := text[len("Resource"):]
		if store == nil {
			return Locator{}, fmt.Errorf("unknown custom resource %s", text)
		}
		c, ok := store.Lookup(name)
		if !ok {
			return Locator{}, fmt.Errorf("unknown custom resource %s", text)
		}
		return Locator{Kind: LocCustom, Custom: c, text: "Resource" + c.Name()}, nil
	}

	slot, ok := pipeline.ParseSlot(text)
	if !ok || !slot.IsResource() {
		return Locator{}, fmt.Errorf("invalid resource locator %q", text)
	}
	return Locator{Kind: LocSlot, Slot: slot, text: slot.String()}, nil
}

// Writable reports whether the locator can be a copy destination.
func (l Locator) Writable() bool {
	return l.Kind == LocSlot || l.Kind == LocCustom
}

// Resolve returns the resource the locator currently refers to, or nil.
func (l Locator) Resolve(c *Context) pipeline.Resource {
	switch l.Kind {
	case LocSlot:
		return c.Device.Bound(l.Slot)
	case LocCustom:
		res, err := l.Custom.Get(c.Device)
		if err != nil {
			c.logger().Debug("Custom resource unavailable.", "resource", l.text, "error", err)
			return nil
		}
		return res
	case LocThis:
		return c.This()
	case LocBackBuffer:
		return c.Device.BackBuffer()
	}
	return nil
}

// Assign binds res to the locator. A nil res unbinds it.
func (l Locator) Assign(c *Context, res pipeline.Resource, opts pipeline.BindOptions) {
	switch l.Kind {
	case LocSlot:
		c.Device.Bind(l.Slot, res, opts)
		if l.Slot.Kind == pipeline.KindRenderTarget || l.Slot.Kind == pipeline.KindDepthStencil {
			c.invalidateRenderTarget()
		}
	case LocCustom:
		l.Custom.Set(res)
	default:
		c.logger().Error("Locator is not writable.", "locator", l.text)
	}
}

func (l Locator) String() string { return l.text }

// LogValue implements slog.LogValuer.
func (l Locator) LogValue() slog.Value { return slog.StringValue(l.text) }
