package command

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/resource"
)

// CopyOptions are the policy keywords of a resource copy.
type CopyOptions uint16

const (
	OptCopy CopyOptions = 1 << iota
	OptReference
	OptUnlessNull
	OptStereo
	OptMono
	OptStereo2Mono
	OptSetViewport
	OptNoViewCache
	OptRaw
	OptCopyDesc
	OptResolveMSAA
)

var copyOptionNames = map[string]CopyOptions{
	"copy":          OptCopy,
	"ref":           OptReference,
	"reference":     OptReference,
	"unless_null":   OptUnlessNull,
	"stereo":        OptStereo,
	"mono":          OptMono,
	"stereo2mono":   OptStereo2Mono,
	"set_viewport":  OptSetViewport,
	"no_view_cache": OptNoViewCache,
	"raw":           OptRaw,
	"copy_desc":     OptCopyDesc,
	"resolve_msaa":  OptResolveMSAA,
}

// ParseCopyOptions parses a whitespace separated keyword list.
func ParseCopyOptions(words []string) (CopyOptions, error) {
	var opts CopyOptions
	for _, w := range words {
		o, ok := copyOptionNames[strings.ToLower(w)]
		if !ok {
			return 0, fmt.Errorf("unknown copy option %q", w)
		}
		opts |= o
	}
	if opts&OptCopy != 0 && opts&OptReference != 0 {
		return 0, fmt.Errorf("copy and reference are mutually exclusive")
	}
	if opts&OptStereo != 0 && opts&OptMono != 0 {
		return 0, fmt.Errorf("stereo and mono are mutually exclusive")
	}
	if opts&OptReference != 0 && opts&(OptStereo2Mono|OptResolveMSAA|OptCopyDesc) != 0 {
		return 0, fmt.Errorf("reference cannot be combined with an option that needs a copy")
	}
	return opts, nil
}

func (o CopyOptions) String() string {
	var words []string
	for _, name := range []string{"copy", "reference", "unless_null", "stereo", "mono", "stereo2mono", "set_viewport", "no_view_cache", "raw", "copy_desc", "resolve_msaa"} {
		if o&copyOptionNames[name] != 0 {
			words = append(words, name)
		}
	}
	return strings.Join(words, " ")
}

// ResourceCopy copies or references a resource from one locator into
// another. A copy into a pipeline slot goes through a private cache
// resource owned by the directive.
type ResourceCopy struct {
	Dst     Locator
	Src     Locator
	Options CopyOptions
	cache   *resource.Custom
	warn    onceLog
}

// NewResourceCopy validates the locators and options.
func NewResourceCopy(dst, src Locator, opts CopyOptions, poolCapacity int) (*ResourceCopy, error) {
	if !dst.Writable() {
		return nil, fmt.Errorf("%s cannot be a copy destination", dst)
	}
	c := &ResourceCopy{Dst: dst, Src: src, Options: opts}
	if c.byValue() && dst.Kind == LocSlot {
		c.cache = resource.NewCustom("", resource.Spec{}, poolCapacity)
	}
	return c, nil
}

// byValue reports whether the source is copied into a new resource rather
// than bound by reference. Without an explicit keyword custom resources
// are copied into and slots are bound by reference.
func (r *ResourceCopy) byValue() bool {
	switch {
	case r.Options&OptReference != 0:
		return false
	case r.Options&(OptCopy|OptStereo2Mono|OptResolveMSAA|OptCopyDesc) != 0:
		return true
	}
	return r.Dst.Kind == LocCustom
}

func (r *ResourceCopy) bindOptions() pipeline.BindOptions {
	return pipeline.BindOptions{
		SetViewport: r.Options&OptSetViewport != 0,
		NoViewCache: r.Options&OptNoViewCache != 0,
		Raw:         r.Options&OptRaw != 0,
	}
}

func (r *ResourceCopy) Execute(c *Context) {
	src := r.Src.Resolve(c)
	if src == nil {
		if r.Options&OptUnlessNull != 0 {
			r.warn.log(c, slog.LevelDebug, "Copy source is null, destination left unchanged.", "src", r.Src, "dst", r.Dst)
			return
		}
		if r.Src.Kind != LocNull {
			r.warn.log(c, slog.LevelDebug, "Copy source is null, destination unbound.", "src", r.Src, "dst", r.Dst)
		}
		r.Dst.Assign(c, nil, r.bindOptions())
		return
	}

	if !r.byValue() {
		r.Dst.Assign(c, src, r.bindOptions())
		return
	}

	desc, mode := r.targetDesc(src.Desc())
	target := r.cache
	if r.Dst.Kind == LocCustom {
		target = r.Dst.Custom
	}
	dst, err := target.Target(c.Device, desc)
	if err != nil {
		r.warn.log(c, slog.LevelWarn, "Copy destination could not be created.", "dst", r.Dst, "error", err)
		return
	}
	if r.Options&OptCopyDesc == 0 && dst != src {
		if err := c.Device.Copy(dst, src, mode); err != nil {
			r.warn.log(c, slog.LevelWarn, "Resource copy failed.", "src", r.Src, "dst", r.Dst, "error", err)
			return
		}
	}
	if r.Dst.Kind == LocSlot {
		r.Dst.Assign(c, dst, r.bindOptions())
	}
}

// targetDesc derives the destination shape from the source shape.
func (r *ResourceCopy) targetDesc(d pipeline.Desc) (pipeline.Desc, pipeline.CopyMode) {
	mode := pipeline.CopyFull
	switch {
	case r.Options&OptStereo2Mono != 0:
		d.Size.Width *= 2
		d.Stereo = false
		mode = pipeline.CopyStereo2Mono
	case r.Options&OptResolveMSAA != 0 && d.SampleCount > 1:
		d.SampleCount = 1
		mode = pipeline.CopyResolveMSAA
	}
	if r.Options&OptStereo != 0 {
		d.Stereo = true
	}
	if r.Options&OptMono != 0 {
		d.Stereo = false
	}
	return d, mode
}

func (r *ResourceCopy) Optimize(*Optimizer) bool { return false }
func (r *ResourceCopy) NoOp(bool) bool           { return false }

func (r *ResourceCopy) String() string {
	s := fmt.Sprintf("%s = %s", r.Dst, r.Src)
	if r.Options != 0 {
		s += " " + r.Options.String()
	}
	return s
}

// ResourceCheck runs the texture override sections that match the resource
// found at a locator, with "this" bound to it.
type ResourceCheck struct {
	Loc Locator
}

func (r *ResourceCheck) Execute(c *Context) {
	res := r.Loc.Resolve(c)
	if res == nil || c.Program == nil {
		return
	}
	prev := c.Resource
	defer func() { c.Resource = prev }()
	c.Resource = res

	for _, name := range c.Device.MatchOverrides(res) {
		s, ok := c.Program.Section(name)
		if !ok {
			continue
		}
		c.RunList(s.List(c.Post))
		if c.Aborted {
			return
		}
	}
}

func (r *ResourceCheck) Optimize(*Optimizer) bool { return false }
func (r *ResourceCheck) NoOp(bool) bool           { return false }
func (r *ResourceCheck) String() string           { return "checktextureoverride = " + r.Loc.String() }
